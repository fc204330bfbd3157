// Package dedup assigns identity keys to imported records, drops the ones
// already stored and flags probable duplicates of manual entries.
package dedup

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"fjacquet/cashflow/internal/models"
	"fjacquet/cashflow/internal/textutils"
)

// BaseHash digests the normalized (date, amount, description, source type)
// tuple of a record.
func BaseHash(tx models.Transaction) string {
	key := strings.Join([]string{
		tx.Date.UTC().Format("2006-01-02"),
		tx.Amount.StringFixed(2),
		strings.ToLower(textutils.CollapseSpaces(tx.Description)),
		strings.ToUpper(tx.SourceType),
	}, "|")
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}

// OccurrenceHash derives the key of the n-th repeat (n >= 1) of a base hash.
func OccurrenceHash(base string, n int) string {
	if n == 0 {
		return base
	}
	return fmt.Sprintf("%x", sha256.Sum256([]byte(fmt.Sprintf("%s:%d", base, n))))
}

// AssignKeys sets UniqueHash on every record of batch, in order. The first
// record with a given base hash keeps it; later identical records get an
// occurrence-suffixed key, so legitimate repeated charges stay distinct and
// re-running over the same batch reproduces the same keys.
func AssignKeys(batch []models.Transaction) {
	seen := make(map[string]int, len(batch))
	for i := range batch {
		base := BaseHash(batch[i])
		key := OccurrenceHash(base, seen[base])
		seen[base]++
		batch[i].UniqueHash = &key
	}
}
