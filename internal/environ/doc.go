// Package environ computes the environment a launched container runs with.
//
// [Resolve] is pure: it maps a project descriptor and the service connection
// settings onto the fixed set of variables the in-container client reads.
// [LoadConnection] is where the connection settings come from: explicit
// values first, then the process environment, then an optional dotenv file.
package environ
