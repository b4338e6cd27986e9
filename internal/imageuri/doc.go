// Package imageuri names the images the launcher builds.
//
// Local names combine the project's image name with the current source
// revision and the run identifier, so rebuilding the same run at the same
// commit lands on the same tag. Registry names prefix a local name with the
// repository coordinates of a hosted registry.
package imageuri
