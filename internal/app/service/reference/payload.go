package reference

import (
	"strings"

	"github.com/google/uuid"
)

// DefaultMemoPrefix is put in front of the reference when no prefix is configured.
const DefaultMemoPrefix = "TT"

// Payload is what a payer is shown for a bill: the memo to type into the
// banking app and the compact form used where dashes get stripped.
type Payload struct {
	Reference string `json:"reference"`
	Memo      string `json:"memo"`
	Compact   string `json:"compact"`
}

// NewPayload renders the transfer memo for ref. Extract(Memo) always returns
// ref. Compact is only recoverable when the reference does not start with
// twelve decimal digits, so Memo is what payers should be told to use.
func NewPayload(prefix string, ref uuid.UUID) Payload {
	canonical := ref.String()
	memo := canonical
	if p := strings.TrimSpace(prefix); p != "" {
		memo = p + " " + canonical
	}
	return Payload{
		Reference: canonical,
		Memo:      memo,
		Compact:   strings.ToUpper(strings.ReplaceAll(canonical, "-", "")),
	}
}
