package offline

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// ComputeDigest returns the SHA-256 hex digest over the canonical
// serialization of {id, items, totalValue, actorId, clientTimestamp}.
//
// The serialization fixes field order, timestamp format (RFC 3339 UTC) and
// money formatting (two decimals), so two otherwise-equal records hash
// identically regardless of which client produced them. The product name is
// the only free-text field and is length-prefixed, so a name containing a
// separator cannot make two different records serialize alike. The digest
// detects corruption or tampering between capture and sync; it is not an
// authentication mechanism.
func ComputeDigest(r SaleRecord) string {
	var b strings.Builder

	b.WriteString(r.ID.String())
	b.WriteByte('|')
	b.WriteString(r.ActorID)
	b.WriteByte('|')
	b.WriteString(r.ClientTimestamp.UTC().Format(time.RFC3339))
	b.WriteByte('|')
	b.WriteString(r.TotalValue.StringFixed(2))

	for _, it := range r.Items {
		b.WriteByte('|')
		b.WriteString(it.ProductID.String())
		b.WriteByte(';')
		b.WriteString(strconv.Itoa(len(it.ProductName)))
		b.WriteByte(':')
		b.WriteString(it.ProductName)
		b.WriteByte(';')
		b.WriteString(it.Quantity.String())
		b.WriteByte(';')
		b.WriteString(it.UnitPrice.StringFixed(2))
		b.WriteByte(';')
		b.WriteString(it.Subtotal.StringFixed(2))
		b.WriteByte(';')
		b.WriteString(strconv.FormatBool(it.RequiresPrescription))
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
