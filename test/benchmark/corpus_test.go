package benchmark

import (
	"fmt"
	"math/rand"
	"strings"
)

var vocabulary = []string{
	"spicy", "chicken", "curry", "sweet", "mango", "dessert", "fish", "rice",
	"paneer", "tikka", "lentil", "soup", "garlic", "butter", "naan", "masala",
	"coconut", "lemon", "grilled", "fried", "noodles", "sauce", "chocolate",
	"cake", "creamy", "tomato", "onion", "ginger", "yogurt", "mint", "cheese",
	"pasta", "basil", "pepper", "honey", "almond", "saffron", "cardamom",
}

// corpus returns n deterministic food descriptions of 6-20 words.
func corpus(n int) []string {
	rng := rand.New(rand.NewSource(42))
	docs := make([]string, n)
	for i := range docs {
		words := make([]string, 6+rng.Intn(15))
		for j := range words {
			words[j] = vocabulary[rng.Intn(len(vocabulary))]
		}
		docs[i] = strings.Join(words, " ")
	}
	return docs
}

var corpusSizes = []int{100, 1000, 10000}

func sizeName(n int) string {
	return fmt.Sprintf("docs_%d", n)
}
