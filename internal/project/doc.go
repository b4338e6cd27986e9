// Package project describes the thing being containerized.
//
// A [Descriptor] is built once per launch request, either by a caller or by
// loading a YAML project file, and is read-only afterwards. A [Backend] names
// the compute target the image is built for. Backends form a closed set;
// each one carries a [Capabilities] record that the renderer and launcher
// consult instead of branching on backend names.
//
// Example usage:
//
//	desc, err := project.Load("launch.yaml")
//	if err != nil {
//	    return err
//	}
//
//	backend, err := project.ParseBackend("sagemaker")
//	if err != nil {
//	    return err
//	}
//
//	if backend.Capabilities().RunAsRoot {
//	    // ...
//	}
package project
