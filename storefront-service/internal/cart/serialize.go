package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

var ErrCorruptSavedCart = errors.New("saved cart is corrupt")

// Serialize encodes lines as a JSON object with sorted keys.
func Serialize(lines map[string]int) (string, error) {
	if lines == nil {
		lines = map[string]int{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return "", fmt.Errorf("serialize cart: %w", err)
	}
	return string(data), nil
}

// Deserialize decodes a serialized cart. The empty string is an empty cart.
func Deserialize(serialized string) (map[string]int, error) {
	lines := make(map[string]int)
	if serialized == "" {
		return lines, nil
	}
	if err := json.Unmarshal([]byte(serialized), &lines); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSavedCart, err)
	}
	if lines == nil {
		lines = make(map[string]int)
	}
	return lines, nil
}

// SavedCartReader returns the serialized cart kept for a user.
type SavedCartReader interface {
	SavedCart(ctx context.Context, userID int64) (string, error)
}

// Restore merges the saved cart of userID into c. Lines already in the
// session keep their quantity; keys that are not product ids are skipped.
func Restore(ctx context.Context, c *Cart, saved SavedCartReader, userID int64) error {
	serialized, err := saved.SavedCart(ctx, userID)
	if err != nil {
		return fmt.Errorf("read saved cart: %w", err)
	}

	lines, err := Deserialize(serialized)
	if err != nil {
		return err
	}

	valid := make(map[string]int, len(lines))
	for key, qty := range lines {
		if _, err := strconv.ParseInt(key, 10, 64); err != nil || qty < 1 {
			continue
		}
		valid[key] = qty
	}
	return c.Merge(ctx, valid)
}
