// Package cache provides a small TTL cache with stampede protection.
//
// Concurrent misses on the same key share one build through singleflight, and
// a fresh entry is served without calling the builder again. A zero TTL turns
// caching off: every call builds, although concurrent callers still share the
// in-flight build.
package cache
