package retrieval

import (
	"math"
	"testing"
)

func TestFitVectorizerVocabulary(t *testing.T) {
	docs := []string{
		"rice planting season",
		"rice harvest storage",
	}
	v := FitVectorizer(docs, 0, 0.8)

	for _, term := range []string{"planting", "harvest", "rice planting", "rice harvest"} {
		if _, ok := v.vocab[term]; !ok {
			t.Errorf("expected term %q in vocabulary", term)
		}
	}
	// "rice" appears in every document, above the 0.8 ratio.
	if _, ok := v.vocab["rice"]; ok {
		t.Errorf("term in all documents should be excluded by max document frequency")
	}
}

func TestFitVectorizerSingleDocKeepsAllTerms(t *testing.T) {
	v := FitVectorizer([]string{"corn blight treatment"}, 0, 0.8)
	if v.Features() == 0 {
		t.Fatalf("single-document corpus must keep its vocabulary, got 0 features")
	}
	if _, ok := v.vocab["corn"]; !ok {
		t.Errorf("expected unigram retained in single-document corpus")
	}
}

func TestFitVectorizerFeatureCap(t *testing.T) {
	docs := []string{
		"one two three four five",
		"six seven eight nine ten",
	}
	v := FitVectorizer(docs, 3, 0.99)
	if got := v.Features(); got != 3 {
		t.Errorf("Features() = %d, want 3", got)
	}
}

func TestFitVectorizerEmpty(t *testing.T) {
	v := FitVectorizer(nil, 100, 0.8)
	if v.Features() != 0 {
		t.Errorf("empty corpus should produce empty vocabulary")
	}
	if vec := v.Transform("anything at all"); len(vec) != 0 {
		t.Errorf("transform on empty vocabulary should be empty, got %v", vec)
	}
}

func TestTransformUnitLength(t *testing.T) {
	docs := []string{
		"tomato seedling care",
		"tomato disease control",
		"irrigation schedule basics",
	}
	v := FitVectorizer(docs, 0, 0.99)
	vec := v.Transform(docs[0])
	if len(vec) == 0 {
		t.Fatalf("transform of an in-corpus document should not be empty")
	}
	var norm float64
	for _, w := range vec {
		norm += w * w
	}
	if math.Abs(math.Sqrt(norm)-1) > 1e-9 {
		t.Errorf("transformed vector norm = %f, want 1", math.Sqrt(norm))
	}
}

func TestCosineSimilarity(t *testing.T) {
	docs := []string{
		"rice planting guide",
		"poultry feed prices",
	}
	v := FitVectorizer(docs, 0, 0.99)

	self := CosineSimilarity(v.Transform(docs[0]), v.Transform(docs[0]))
	if math.Abs(self-1) > 1e-9 {
		t.Errorf("self similarity = %f, want 1", self)
	}
	cross := CosineSimilarity(v.Transform(docs[0]), v.Transform(docs[1]))
	if cross != 0 {
		t.Errorf("similarity of disjoint documents = %f, want 0", cross)
	}
	if got := CosineSimilarity(Vector{}, v.Transform(docs[0])); got != 0 {
		t.Errorf("similarity with empty vector = %f, want 0", got)
	}
}

func TestNgrams(t *testing.T) {
	got := ngrams("rice planting guide")
	want := []string{"rice", "planting", "guide", "rice planting", "planting guide"}
	if len(got) != len(want) {
		t.Fatalf("ngrams returned %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ngrams[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if ngrams("") != nil {
		t.Errorf("ngrams of empty string should be nil")
	}
}
