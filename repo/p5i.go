package repo

import (
	"context"
	"encoding/json"
	"fmt"
)

// p5iDocument is the publisher interchange format (p5i, version 1) that
// pkg(7) clients expect from the publisher endpoint.
type p5iDocument struct {
	Packages   []string       `json:"packages"`
	Publishers []p5iPublisher `json:"publishers"`
	Version    int            `json:"version"`
}

type p5iPublisher struct {
	Alias        *string  `json:"alias"`
	Name         string   `json:"name"`
	Packages     []string `json:"packages"`
	Repositories []any    `json:"repositories"`
}

// PublisherInfo serializes the full publisher list as a p5i document.
func (r *Repository) PublisherInfo(ctx context.Context) ([]byte, error) {
	pubs, err := r.Publishers(ctx)
	if err != nil {
		return nil, err
	}

	doc := p5iDocument{
		Packages:   []string{},
		Publishers: make([]p5iPublisher, 0, len(pubs)),
		Version:    1,
	}
	for _, pub := range pubs {
		p := p5iPublisher{
			Name:         pub.Prefix,
			Packages:     []string{},
			Repositories: []any{},
		}
		if pub.Alias != "" {
			alias := pub.Alias
			p.Alias = &alias
		}
		doc.Publishers = append(doc.Publishers, p)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("serialize publisher info: %w", err)
	}
	return data, nil
}

// statusDocument mirrors the status endpoint's JSON shape.
type statusDocument struct {
	Repository statusRepository `json:"repository"`
	Version    int              `json:"version"`
}

type statusRepository struct {
	Status  string `json:"status"`
	Version int    `json:"version"`
}

// Status returns the repository status document. A repository this
// reader can open is by definition online.
func (r *Repository) Status(_ context.Context) ([]byte, error) {
	doc := statusDocument{
		Repository: statusRepository{Status: "online", Version: r.version},
		Version:    1,
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("serialize status: %w", err)
	}
	return data, nil
}
