// Package sid implements security identifiers in their canonical
// S-R-A-S1-S2... text form and their binary wire layout.
package sid
