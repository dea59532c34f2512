// Package dataset loads the food collection and its metadata. It is the
// upstream collaborator of the retrieval core: it yields one cleaned text per
// document in identifier order plus a parallel metadata table.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/pkg/errors"
)

const (
	colFoodID   = "Food_ID"
	colName     = "Name"
	colCategory = "C_Type"
	colDiet     = "Veg_Non"
	colDescribe = "Describe"
	colRating   = "Rating"
)

// Food is the metadata of one document.
type Food struct {
	FoodID      string  `json:"food_id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Diet        string  `json:"diet"`
	Rating      float64 `json:"rating"`
	Rated       bool    `json:"rated"`
	Description string  `json:"description"`
}

// Collection is an immutable list of documents. A document's identifier is
// its position.
type Collection struct {
	foods []Food
	texts []string
}

// NewCollection cleans each description with tokenizer.Clean.
func NewCollection(foods []Food) *Collection {
	c := &Collection{
		foods: append([]Food(nil), foods...),
		texts: make([]string, len(foods)),
	}
	for i, f := range c.foods {
		c.texts[i] = tokenizer.Clean(f.Description)
	}
	return c
}

// Texts returns a copy of the cleaned document texts.
func (c *Collection) Texts() []string {
	return append([]string(nil), c.texts...)
}

// Foods returns a copy of the metadata table in identifier order.
func (c *Collection) Foods() []Food {
	return append([]Food(nil), c.foods...)
}

// Len returns the number of documents.
func (c *Collection) Len() int {
	return len(c.foods)
}

// Meta returns the metadata of document id.
func (c *Collection) Meta(id int) (Food, bool) {
	if id < 0 || id >= len(c.foods) {
		return Food{}, false
	}
	return c.foods[id], true
}

// Rating is a tie-break function over document ids.
func (c *Collection) Rating(id int) float64 {
	if id < 0 || id >= len(c.foods) {
		return 0
	}
	return c.foods[id].Rating
}

// FoodID is a deduplication key over document ids.
func (c *Collection) FoodID(id int) string {
	if id < 0 || id >= len(c.foods) {
		return ""
	}
	return c.foods[id].FoodID
}

// Filter selects documents for the recommendation flow. Empty string fields
// match anything.
type Filter struct {
	Category  string
	Diet      string
	MinRating float64
}

// Match returns a predicate over document ids.
func (c *Collection) Match(f Filter) func(id int) bool {
	return func(id int) bool {
		food, ok := c.Meta(id)
		if !ok {
			return false
		}
		if f.Category != "" && !strings.EqualFold(food.Category, f.Category) {
			return false
		}
		if f.Diet != "" && !strings.EqualFold(food.Diet, f.Diet) {
			return false
		}
		return food.Rating >= f.MinRating
	}
}

// Categories returns the distinct categories in first-seen order.
func (c *Collection) Categories() []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, f := range c.foods {
		if f.Category == "" {
			continue
		}
		if _, ok := seen[f.Category]; ok {
			continue
		}
		seen[f.Category] = struct{}{}
		out = append(out, f.Category)
	}
	return out
}

// LoadCSV reads the food file and, when ratingsPath is non-empty, joins the
// mean rating of each Food_ID.
func LoadCSV(foodPath, ratingsPath string) (*Collection, error) {
	f, err := os.Open(foodPath)
	if err != nil {
		return nil, fmt.Errorf("opening food dataset %s: %w", foodPath, err)
	}
	defer f.Close()
	foods, err := ReadFoods(f)
	if err != nil {
		return nil, fmt.Errorf("reading food dataset %s: %w", foodPath, err)
	}
	if ratingsPath != "" {
		rf, err := os.Open(ratingsPath)
		if err != nil {
			return nil, fmt.Errorf("opening ratings %s: %w", ratingsPath, err)
		}
		defer rf.Close()
		ratings, err := ReadRatings(rf)
		if err != nil {
			return nil, fmt.Errorf("reading ratings %s: %w", ratingsPath, err)
		}
		JoinRatings(foods, ratings)
	}
	return NewCollection(foods), nil
}

// ReadFoods parses a food CSV. Only the Describe column is required.
func ReadFoods(r io.Reader) ([]Food, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s (empty file)", apperrors.ErrMissingColumn, colDescribe)
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}
	cols := columnIndex(header)
	if _, ok := cols[colDescribe]; !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrMissingColumn, colDescribe)
	}
	foods := make([]Food, 0)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", len(foods)+1, err)
		}
		food := Food{
			FoodID:      field(rec, cols, colFoodID),
			Name:        field(rec, cols, colName),
			Category:    field(rec, cols, colCategory),
			Diet:        field(rec, cols, colDiet),
			Description: field(rec, cols, colDescribe),
		}
		if food.FoodID == "" {
			food.FoodID = strconv.Itoa(len(foods))
		}
		if v := field(rec, cols, colRating); v != "" {
			if rating, err := strconv.ParseFloat(v, 64); err == nil {
				food.Rating = rating
				food.Rated = true
			}
		}
		foods = append(foods, food)
	}
	return foods, nil
}

// ReadRatings parses a ratings CSV and returns the mean rating per Food_ID.
// Rows with an unparsable rating are skipped.
func ReadRatings(r io.Reader) (map[string]float64, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s (empty file)", apperrors.ErrMissingColumn, colFoodID)
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}
	cols := columnIndex(header)
	if _, ok := cols[colFoodID]; !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrMissingColumn, colFoodID)
	}
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading ratings row: %w", err)
		}
		id := field(rec, cols, colFoodID)
		rating, err := strconv.ParseFloat(field(rec, cols, colRating), 64)
		if id == "" || err != nil {
			continue
		}
		sums[id] += rating
		counts[id]++
	}
	means := make(map[string]float64, len(sums))
	for id, sum := range sums {
		means[id] = sum / float64(counts[id])
	}
	return means, nil
}

// JoinRatings sets Rating on every food whose FoodID has a rating.
func JoinRatings(foods []Food, ratings map[string]float64) {
	for i := range foods {
		if r, ok := ratings[foods[i].FoodID]; ok {
			foods[i].Rating = r
			foods[i].Rated = true
		}
	}
}

func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	return cols
}

func field(rec []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
