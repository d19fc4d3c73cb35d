// Package farm stores aquaponics farms (akuaponik) and their ponds (kolam).
//
// A farm belongs to one user and contains any number of ponds. Ponds are
// the unit that sensors report on and actuators act on.
//
// Ownership is checked when a farm is created and not enforced afterwards;
// there are no foreign keys between the tables.
package farm
