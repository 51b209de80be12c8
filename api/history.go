package api

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sort"

	"github.com/MeticulousHome/meticulous-go/errors"
	"github.com/MeticulousHome/meticulous-go/types"
)

// ListHistoryDates returns the machine's shot log date buckets, one per
// day with recorded shots.
func (c *Client) ListHistoryDates(ctx context.Context) ([]types.HistoryFile, error) {
	var dates []types.HistoryFile
	if err := c.getJSON(ctx, "ListHistoryDates", "/api/v1/history/files/", &dates); err != nil {
		return nil, err
	}
	return dates, nil
}

// ListShotFiles returns the shot log files recorded under one date
// bucket.
func (c *Client) ListShotFiles(ctx context.Context, date string) ([]types.HistoryFile, error) {
	var files []types.HistoryFile
	if err := c.getJSON(ctx, "ListShotFiles", "/api/v1/history/files/"+date, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// GetShotLog fetches one recorded shot log and decodes it. file is the
// URL segment from a ListShotFiles entry.
func (c *Client) GetShotLog(ctx context.Context, date, file string) (map[string]any, error) {
	body, err := c.get(ctx, "GetShotLog", fmt.Sprintf("/api/v1/history/files/%s/%s", date, file))
	if err != nil {
		return nil, err
	}

	doc, err := decodePayload(body)
	if err != nil {
		if stderrors.Is(err, errors.ErrDecompressionFailed) {
			c.recordError("decompression")
		} else {
			c.recordError("parse")
		}
		return nil, err
	}
	return doc, nil
}

// GetLastShotLog finds the newest recorded shot and returns its decoded
// log. Date buckets and shot files use fixed-width date/time naming, so
// descending lexical order is newest-first.
func (c *Client) GetLastShotLog(ctx context.Context) (map[string]any, error) {
	dates, err := c.ListHistoryDates(ctx)
	if err != nil {
		return nil, err
	}
	if len(dates) == 0 {
		return nil, errors.WrapInvalid(fmt.Errorf("%w: no history dates", errors.ErrNoData), "api", "GetLastShotLog", "list history dates")
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Name > dates[j].Name })
	latest := dates[0]

	files, err := c.ListShotFiles(ctx, latest.Name)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.WrapInvalid(fmt.Errorf("%w: no shot files for %s", errors.ErrNoData, latest.Name), "api", "GetLastShotLog", "list shot files")
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name > files[j].Name })

	return c.GetShotLog(ctx, latest.Name, files[0].URL)
}

// GetCurrentShot returns the shot in progress. The machine reports JSON
// null when nothing is brewing; that case returns ok=false with no
// error.
func (c *Client) GetCurrentShot(ctx context.Context) (*types.HistoryEntry, bool, error) {
	return c.shotEntry(ctx, "GetCurrentShot", "/api/v1/history/current")
}

// GetLastShot returns the most recently completed shot, or ok=false when
// the machine has nothing recorded.
func (c *Client) GetLastShot(ctx context.Context) (*types.HistoryEntry, bool, error) {
	return c.shotEntry(ctx, "GetLastShot", "/api/v1/history/last")
}

// shotEntry fetches a single-entry shot endpoint, mapping the machine's
// JSON null to the no-data variant.
func (c *Client) shotEntry(ctx context.Context, operation, path string) (*types.HistoryEntry, bool, error) {
	body, err := c.get(ctx, operation, path)
	if err != nil {
		return nil, false, err
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, false, nil
	}

	var entry types.HistoryEntry
	if err := json.Unmarshal(trimmed, &entry); err != nil {
		c.recordError("parse")
		return nil, false, errors.WrapInvalid(fmt.Errorf("%w: %w", errors.ErrParsingFailed, err), "api", operation, "decode response")
	}
	return &entry, true, nil
}
