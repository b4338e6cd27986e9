// Provides platform-appropriate paths for configuration and run state.
//
// All paths follow XDG conventions on Linux and platform-native conventions
// on macOS and Windows. The name "cruxlaunch" is used as the subdirectory
// under each base path.
package paths
