// Package dockerfile renders the build file for a project.
//
// Rendering is pure apart from reading the project's requirements files to
// decide how dependencies are installed. Every input that would otherwise
// require probing the host (the BuildKit frontend, the host interpreter
// version, the host user) is passed in through [Options], so identical
// inputs always produce byte-identical documents.
//
// The document is composed from an ordered list of named sections. Each
// section is rendered on its own and checked with the BuildKit Dockerfile
// parser before the sections are joined into the fixed two-stage skeleton:
// a "build" stage that prepares the /env environment, and a "base" stage
// that copies it across, sets up the runtime user and the entrypoint.
//
// Example usage:
//
//	doc, err := dockerfile.Render(desc, "python train.py", project.Local, dockerfile.Options{
//	    BuildKit:          true,
//	    HostPythonVersion: "3.11.4",
//	    User:              dockerfile.HostUser{Name: "alice", UID: 1000},
//	})
//	if err != nil {
//	    return err
//	}
//
//	os.WriteFile(dockerfile.GeneratedName, doc.Bytes(), 0644)
package dockerfile
