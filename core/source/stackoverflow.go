package source

import (
	"context"
	"encoding/xml"
	"fmt"
	"strconv"

	"go.uber.org/zap"
)

// StackOverflow reads the tag table of the StackOverflow data dump.
type StackOverflow struct {
	url    string
	client *Client
	logger *zap.Logger
}

// NewStackOverflow creates a tags source reading the Tags.xml dump at url.
func NewStackOverflow(url string, client *Client, logger *zap.Logger) *StackOverflow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StackOverflow{url: url, client: client, logger: logger}
}

type tagsDump struct {
	Rows []struct {
		TagName string `xml:"TagName,attr"`
		Count   string `xml:"Count,attr"`
	} `xml:"row"`
}

// Tags returns the number of questions per tag. Rows without a name or with
// an unparsable count are skipped.
func (s *StackOverflow) Tags(ctx context.Context) (map[string]int, error) {
	body, err := s.client.Get(ctx, "stackoverflow", "", s.url, nil)
	if err != nil {
		return nil, err
	}

	var dump tagsDump
	if err := xml.Unmarshal(body, &dump); err != nil {
		return nil, fmt.Errorf("decode stackoverflow tags: %w", err)
	}

	tags := make(map[string]int, len(dump.Rows))
	for _, row := range dump.Rows {
		if row.TagName == "" {
			s.logger.Warn("Missing tag name in StackOverflow dump")
			continue
		}
		count, err := strconv.Atoi(row.Count)
		if err != nil || count < 0 {
			s.logger.Warn("Failed to parse tag occurrences", zap.String("tag", row.TagName), zap.String("count", row.Count))
			continue
		}
		tags[row.TagName] = count
	}
	return tags, nil
}
