// Package lifecal maps calendar dates onto a birthday-relative life grid.
//
// A life is drawn as 90 rows (years) of 52 cells (weeks). Row N starts on the Nth
// anniversary of the birthday; cell W of a row starts (W-1)*7 days after it. The
// last cell of every row stretches to the day before the next anniversary, so the
// grid never needs a 53rd column.
//
// All functions are pure. "Now" is always an explicit argument; use a Clock at the
// edges of the program to obtain it.
package lifecal
