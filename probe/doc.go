// Package probe reads container metadata and packet timing statistics from a
// local media file by shelling out to ffprobe.
//
// Key types:
//   - MediaStats: duration, display size and sampled packet statistics
//   - Result: outcome of an inspection, which may legitimately carry no video
//   - Prober: runs ffprobe through a Runner so tests can substitute output
//
// Statistics are estimated from a bounded window of packets at the start of the
// primary video track; duration comes from the container. Frames are never decoded.
package probe
