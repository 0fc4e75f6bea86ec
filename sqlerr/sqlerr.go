// Package sqlerr specifically handles database driver errors.
//
// It parses cryptic error codes from the database driver and converts
// them into a small set of categories the repository layer can switch
// on (e.g. converting SQLSTATE 23505 into a unique-violation code),
// keeping the driver's own metadata available for diagnostics.
package sqlerr
