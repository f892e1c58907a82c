// README: Pickup/return location resolution for branch mode and free-text mode.
package quote

import (
	"slices"
	"strings"
	"unicode/utf8"
)

// OtherBranch is the branch-mode choice that switches an endpoint to its free-text override.
const OtherBranch = "__other__"

const minLocationLen = 2

type EndpointLocation struct {
	Branch string `json:"branch,omitempty"`
	Other  string `json:"other,omitempty"`
	Text   string `json:"text,omitempty"`
}

type LocationConfig struct {
	BranchModeEnabled bool             `json:"branchModeEnabled"`
	Pickup            EndpointLocation `json:"pickup"`
	Return            EndpointLocation `json:"return"`
}

type ResolvedLocation struct {
	Pickup      string `json:"pickup"`
	Return      string `json:"return"`
	PickupValid bool   `json:"pickupValid"`
	ReturnValid bool   `json:"returnValid"`
}

func (r ResolvedLocation) Valid() bool {
	return r.PickupValid && r.ReturnValid
}

func ResolveLocation(cfg LocationConfig, branches []string) ResolvedLocation {
	var r ResolvedLocation
	r.Pickup, r.PickupValid = resolveEndpoint(cfg.BranchModeEnabled, cfg.Pickup, branches)
	r.Return, r.ReturnValid = resolveEndpoint(cfg.BranchModeEnabled, cfg.Return, branches)
	return r
}

func resolveEndpoint(branchMode bool, e EndpointLocation, branches []string) (string, bool) {
	if !branchMode {
		text := strings.TrimSpace(e.Text)
		return text, text == "" || utf8.RuneCountInString(text) >= minLocationLen
	}

	branch := strings.TrimSpace(e.Branch)
	switch {
	case branch == OtherBranch:
		other := strings.TrimSpace(e.Other)
		return other, utf8.RuneCountInString(other) >= minLocationLen
	case branch == "":
		// unselected dropdown starts on the first branch
		if len(branches) == 0 {
			return "", false
		}
		return branches[0], true
	default:
		return branch, slices.Contains(branches, branch)
	}
}
