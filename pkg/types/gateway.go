package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// TransferDirection mirrors the gateway's transferType field.
type TransferDirection string

const (
	TransferDirectionIn  TransferDirection = "in"
	TransferDirectionOut TransferDirection = "out"
)

// ParseTransferDirection defaults to "in"; the gateway omits it for credits.
func ParseTransferDirection(s string) TransferDirection {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "out", "debit":
		return TransferDirectionOut
	default:
		return TransferDirectionIn
	}
}

func (d TransferDirection) IsCredit() bool { return d != TransferDirectionOut }

// GatewayTransactionID accepts the gateway id as a JSON number or string.
type GatewayTransactionID string

// UnmarshalJSON decodes the value itself with encoding/json so it behaves the
// same whether gin's binder or goccy/go-json drives the outer decode;
// json.Number keeps large numeric ids exact instead of going through float64.
func (id *GatewayTransactionID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = GatewayTransactionID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("gateway transaction id must be a number or string: %w", err)
	}
	*id = GatewayTransactionID(n.String())
	return nil
}

func (id GatewayTransactionID) String() string { return string(id) }
