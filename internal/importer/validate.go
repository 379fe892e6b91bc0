package importer

// minIsinLength is the floor for identifier length. A canonical ISIN is 12
// characters, but house codes and test identifiers run shorter; anything
// under 5 is a placeholder, not an identifier.
const minIsinLength = 5

// validIsin reports whether an identifier is usable as a fund key.
// Blank values and the literal "-" placeholder are rejected; "nan" cells
// never reach here (the normalizer already treats them as absent).
func validIsin(isin string) bool {
	if isin == "" || isin == "-" {
		return false
	}
	return len(isin) >= minIsinLength
}

// checkIsin classifies the identifier of any record kind.
func checkIsin(isin string, stats *Stats) bool {
	if !validIsin(isin) {
		stats.skip(SkipInvalidIsin)
		return false
	}
	return true
}

// checkFundExists enforces the referential rule for kinds that require a
// pre-existing fund. The fund set is loaded after earlier steps of the same
// run have committed, so it sees funds created by a factsheet import in the
// same combined run.
func checkFundExists(isin string, funds map[string]struct{}, stats *Stats) bool {
	if _, ok := funds[isin]; !ok {
		stats.skip(SkipNoFund)
		return false
	}
	return true
}

// validateNav classifies the date and value of a NAV record after its
// identifier and referential checks have passed.
func validateNav(rec navRecord, stats *Stats) bool {
	if rec.date == nil {
		stats.skip(SkipInvalidDate)
		return false
	}
	if rec.nav == nil || *rec.nav <= 0 {
		stats.skip(SkipInvalidNav)
		return false
	}
	return true
}
