package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const timeFormat = time.RFC3339Nano // Use a precise time format

// EncodeToken creates a base64 encoded token from a voucher date and creation time.
// This is used for consistent pagination across different repositories.
func EncodeToken(voucherDate time.Time, createdAt time.Time) string {
	tokenStr := fmt.Sprintf("%s|%s", voucherDate.Format(timeFormat), createdAt.Format(timeFormat))
	return base64.StdEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeToken parses the base64 encoded token back into voucher date and creation time.
func DecodeToken(token string) (time.Time, time.Time, error) {
	decodedBytes, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	tokenStr := string(decodedBytes)
	parts := strings.SplitN(tokenStr, "|", 2)
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid pagination token format (split)")
	}

	voucherDate, err := time.Parse(timeFormat, parts[0])
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid pagination token format (voucher date parse): %w", err)
	}

	createdAt, err := time.Parse(timeFormat, parts[1])
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid pagination token format (created_at parse): %w", err)
	}

	return voucherDate, createdAt, nil
}

// EncodeStatementToken creates a token for resuming a ledger statement: the
// date, voucher number and entry ID of the last returned line, plus the
// running balance after it so resumption does not rescan history. The entry ID
// keeps the cursor exact when a page boundary falls between two entries of the
// same voucher on the same ledger.
func EncodeStatementToken(date time.Time, voucherNumber int64, entryID string, runningBalance string) string {
	tokenStr := fmt.Sprintf("%s|%d|%s|%s", date.Format(timeFormat), voucherNumber, entryID, runningBalance)
	return base64.StdEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeStatementToken decodes a statement resumption token into the date,
// voucher number, entry ID and running balance it carries.
func DecodeStatementToken(token string) (time.Time, int64, string, string, error) {
	decodedBytes, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return time.Time{}, 0, "", "", fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	parts := strings.SplitN(string(decodedBytes), "|", 4)
	if len(parts) != 4 {
		return time.Time{}, 0, "", "", fmt.Errorf("invalid pagination token format (split)")
	}

	date, err := time.Parse(timeFormat, parts[0])
	if err != nil {
		return time.Time{}, 0, "", "", fmt.Errorf("invalid pagination token format (date parse): %w", err)
	}

	voucherNumber, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return time.Time{}, 0, "", "", fmt.Errorf("invalid pagination token format (voucher number parse): %w", err)
	}

	return date, voucherNumber, parts[2], parts[3], nil
}
