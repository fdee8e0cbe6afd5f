// Package classify maps free-form case descriptions onto Clio practice-area
// labels by keyword matching.
package classify

import "strings"

// DefaultArea is returned when no keyword group matches, and for empty input.
const DefaultArea = "General"

type areaGroup struct {
	label    string
	keywords []string
}

// areaGroups is the tie-break contract: groups are checked in this order and
// the first keyword hit anywhere in the text wins. A description mentioning
// both an accident and a divorce is Personal Injury because that group is
// checked first. Do not reorder.
var areaGroups = []areaGroup{
	{"Personal Injury", []string{
		"personal injury", "accident", "injury", "hurt", "slip and fall",
		"car accident", "auto accident", "motor vehicle", "medical malpractice",
		"wrongful death", "premises liability", "product liability", "dog bite",
		"bicycle accident", "motorcycle accident", "pedestrian accident",
		"nursing home abuse", "construction accident", "workplace injury",
	}},
	{"Family Law", []string{
		"divorce", "custody", "child support", "alimony", "spousal support",
		"marriage", "separation", "adoption", "family", "spouse", "prenup",
		"prenuptial", "domestic violence", "restraining order", "paternity",
		"visitation", "guardianship", "child custody", "domestic relations",
	}},
	{"Criminal Law", []string{
		"criminal", "arrest", "arrested", "charge", "charged", "offense",
		"crime", "dui", "dwi", "owi", "theft", "assault", "battery",
		"probation", "jail", "prison", "felony", "misdemeanor", "warrant",
		"drug", "trafficking", "possession", "domestic violence", "fraud",
		"embezzlement", "burglary", "robbery", "homicide", "manslaughter",
	}},
	{"Estate Planning", []string{
		"estate", "will", "trust", "inheritance", "probate", "executor",
		"beneficiary", "death", "asset", "living will", "power of attorney",
		"estate planning", "succession", "heir", "testamentary", "guardian",
		"conservatorship", "elder law", "medicaid planning",
	}},
	{"Real Estate", []string{
		"real estate", "property", "house", "home", "closing", "deed",
		"title", "mortgage", "foreclosure", "landlord", "tenant", "lease",
		"eviction", "zoning", "easement", "boundary", "construction",
		"homeowners association", "hoa", "purchase agreement",
	}},
	{"Business Law", []string{
		"business", "contract", "llc", "corporation", "partnership",
		"employment", "fired", "wrongful termination", "discrimination",
		"harassment", "wage", "overtime", "breach of contract", "lawsuit",
		"commercial", "intellectual property", "trademark", "copyright",
		"non-compete", "partnership dispute", "shareholder",
	}},
	{"Immigration", []string{
		"immigration", "visa", "green card", "citizenship", "deportation",
		"asylum", "refugee", "work permit", "naturalization", "ice",
		"immigration court", "removal proceedings", "family petition",
	}},
	{"Bankruptcy", []string{
		"bankruptcy", "chapter 7", "chapter 13", "debt", "foreclosure",
		"creditor", "discharge", "filing bankruptcy", "debt relief",
	}},
	{"Social Security Disability", []string{
		"disability", "social security", "ssdi", "ssi", "disabled",
		"disability benefits", "social security disability",
	}},
	{"Workers' Compensation", []string{
		"workers compensation", "workers comp", "work injury",
		"on the job injury", "workplace accident", "injured at work",
	}},
	{"Civil Rights", []string{
		"civil rights", "discrimination", "police brutality", "excessive force",
		"constitutional rights", "section 1983", "civil lawsuit",
	}},
	{"Tax Law", []string{
		"tax", "irs", "tax debt", "tax lien", "tax levy", "audit",
		"tax resolution", "offer in compromise", "innocent spouse",
	}},
}

// Classify returns the practice-area label for a case description. Empty
// input and unmatched input both return DefaultArea.
func Classify(description string) string {
	if description == "" {
		return DefaultArea
	}

	lower := strings.ToLower(description)
	for _, group := range areaGroups {
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				return group.label
			}
		}
	}
	return DefaultArea
}
