// Package rt implements the trashtalk object runtime.
//
// This package contains:
//   - Class descriptors with single-inheritance method tables
//   - A builder-based class definition compiler
//   - Method resolution with my/next dispatch and an unknown fallback
//   - Object lifecycle: create, new, rename, destroy, class cascade
//   - Per-object instance variable stores
package rt
