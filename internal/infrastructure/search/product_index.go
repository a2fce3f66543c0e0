package search

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/ppfood/api/internal/domain/entity"
)

// ProductIndex mirrors the product catalog into Elasticsearch for full-text
// search across the bilingual name and description fields. All methods are
// best-effort; the catalog in Postgres stays the source of truth.
type ProductIndex struct {
	ES     *elasticsearch.Client
	Index  string
	Logger *logrus.Logger
}

func NewProductIndex(es *elasticsearch.Client, index string, logger *logrus.Logger) *ProductIndex {
	return &ProductIndex{ES: es, Index: index, Logger: logger}
}

func (pi *ProductIndex) enabled() bool {
	return pi != nil && pi.ES != nil && pi.Index != ""
}

func (pi *ProductIndex) IndexProduct(ctx context.Context, p *entity.Product) error {
	if !pi.enabled() {
		return nil
	}
	doc := map[string]any{
		"id":             p.ID,
		"category_id":    p.CategoryID,
		"name_th":        p.NameTH,
		"name_en":        p.NameEN,
		"description_th": p.DescriptionTH,
		"description_en": p.DescriptionEN,
		"price":          p.Price,
		"is_available":   p.IsAvailable,
		"is_recommended": p.IsRecommended,
		"updated_at":     p.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{
		Index:      pi.Index,
		DocumentID: strconv.FormatInt(p.ID, 10),
		Body:       strings.NewReader(string(b)),
		Refresh:    "false",
	}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, pi.ES)
	if err != nil {
		if pi.Logger != nil {
			pi.Logger.WithError(err).WithField("product_id", p.ID).Warn("es index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && pi.Logger != nil {
		pi.Logger.WithField("status", res.Status()).WithField("product_id", p.ID).Warn("es index response error")
	}
	return nil
}

func (pi *ProductIndex) DeleteProduct(ctx context.Context, id int64) error {
	if !pi.enabled() {
		return nil
	}
	req := esapi.DeleteRequest{Index: pi.Index, DocumentID: strconv.FormatInt(id, 10)}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, pi.ES)
	if err != nil {
		if pi.Logger != nil {
			pi.Logger.WithError(err).WithField("product_id", id).Warn("es delete failed")
		}
		return err
	}
	_ = res.Body.Close()
	return nil
}

// Search returns matching product IDs ranked by relevance, or ok=false when
// the index is unavailable and the caller should fall back to SQL matching.
func (pi *ProductIndex) Search(ctx context.Context, q string, size int) (ids []int64, ok bool) {
	if !pi.enabled() || q == "" {
		return nil, false
	}
	if size <= 0 || size > 100 {
		size = 50
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"name_th^2", "name_en^2", "description_th", "description_en"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := pi.ES.Search(
		pi.ES.Search.WithContext(c),
		pi.ES.Search.WithIndex(pi.Index),
		pi.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		if pi.Logger != nil {
			pi.Logger.WithError(err).Warn("es search failed")
		}
		return nil, false
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, false
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, false
	}

	ids = make([]int64, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		id, err := strconv.ParseInt(h.ID, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, true
}
