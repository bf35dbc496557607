package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/domonda/go-bstable"
)

// MaxLimit is the maximum accepted page size.
const MaxLimit = 10000

// ParsePageParams parses the query parameters
// the widget sends with data requests.
func ParsePageParams(r *http.Request) (bstable.PageParams, error) {
	query := r.URL.Query()
	page := bstable.PageParams{
		Search: query.Get("search"),
		Sort:   query.Get("sort"),
		Order:  strings.ToLower(query.Get("order")),
	}
	var err error
	if page.Limit, err = parseNonNegative(query.Get("limit")); err != nil {
		return page, fmt.Errorf("query parameter limit: %w", err)
	}
	if page.Limit > MaxLimit {
		return page, fmt.Errorf("query parameter limit %d exceeds %d", page.Limit, MaxLimit)
	}
	if page.Offset, err = parseNonNegative(query.Get("offset")); err != nil {
		return page, fmt.Errorf("query parameter offset: %w", err)
	}
	switch page.Order {
	case "", "asc", "desc":
	default:
		return page, fmt.Errorf("invalid query parameter order %q", page.Order)
	}
	return page, nil
}

func parseNonNegative(str string) (int, error) {
	if str == "" {
		return 0, nil
	}
	i, err := strconv.Atoi(str)
	if err != nil {
		return 0, err
	}
	if i < 0 {
		return 0, fmt.Errorf("negative value %d", i)
	}
	return i, nil
}

// cacheKey hashes the JSON of params
// which has its map keys sorted.
func cacheKey(params map[string]any) (uint64, error) {
	data, err := json.Marshal(params)
	if err != nil {
		return 0, err
	}
	return xxhash.Sum64(data), nil
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	decoder.UseNumber()
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decoding request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data any) (int, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return http.StatusInternalServerError, err
	}
	return writeRawJSON(w, status, body)
}

func writeRawJSON(w http.ResponseWriter, status int, body []byte) (int, error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status is already sent, write errors can only be dropped
	_, _ = w.Write(body)
	return status, nil
}
