// Package assignment implements the workload assignment engine: creating
// TA-to-requirement assignments under a capacity policy, driving the
// assignment status lifecycle, and forming collaborations between TAs.
package assignment
