package dataset

import (
	"context"
	"fmt"

	"github.com/GabrielDeml/simpleaiv2-sub001/internal/tokenizer"
)

const (
	sentimentSeqLen  = 150
	sentimentClasses = 2
	sentimentVocab   = 1000
)

// The corpus is assembled from templates so the set is large enough to train
// on while staying embedded in the binary.
var (
	sentimentSubjects = []string{
		"the movie", "this film", "the plot", "the acting",
		"the soundtrack", "the direction", "the script", "the ending",
	}
	sentimentPositive = []string{
		"wonderful", "brilliant", "moving", "delightful",
		"superb", "gripping", "charming", "excellent",
	}
	sentimentNegative = []string{
		"terrible", "boring", "clumsy", "predictable",
		"dull", "painful", "messy", "forgettable",
	}
	sentimentTemplates = []string{
		"%s was absolutely %s",
		"i thought %s felt %s from start to finish",
	}
)

// Sentiment is an embedded binary text-classification dataset. Reviews are
// tokenized to fixed-length id sequences, so its tensors are rank 2
// ([batch, seqLen]) rather than the image datasets' rank 4.
type Sentiment struct {
	base
	encoder tokenizer.Encoder
}

var _ Dataset = (*Sentiment)(nil)

// NewSentiment creates the sentiment dataset with a word-level tokenizer
// fitted on the training split.
func NewSentiment() *Sentiment {
	return NewSentimentWithEncoder(tokenizer.NewWord(sentimentVocab))
}

// NewSentimentWithEncoder creates the sentiment dataset with a custom text
// encoder (e.g. a tiktoken subword encoder). Trainable encoders are fitted
// on the training split before encoding.
func NewSentimentWithEncoder(enc tokenizer.Encoder) *Sentiment {
	d := &Sentiment{encoder: enc}
	trainTexts, _, testTexts, _ := sentimentCorpus()
	d.base = base{
		meta: Metadata{
			Name:        "sentiment",
			Description: "Movie review sentiment (token sequences)",
			InputShape:  []int{sentimentSeqLen},
			Channels:    1,
			NumClasses:  sentimentClasses,
			TrainSize:   len(trainTexts),
			TestSize:    len(testTexts),
			ClassNames:  []string{"negative", "positive"},
		},
		produce: d.encode,
	}
	return d
}

func (d *Sentiment) encode(ctx context.Context) (*Arrays, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	trainTexts, trainClasses, testTexts, testClasses := sentimentCorpus()

	if trainable, ok := d.encoder.(tokenizer.Trainable); ok {
		trainable.Fit(trainTexts)
	}

	trainImages := encodeTexts(d.encoder, trainTexts)
	testImages := encodeTexts(d.encoder, testTexts)
	return &Arrays{
		TrainImages: trainImages,
		TrainLabels: oneHot(trainClasses, sentimentClasses),
		TestImages:  testImages,
		TestLabels:  oneHot(testClasses, sentimentClasses),
	}, nil
}

func encodeTexts(enc tokenizer.Encoder, texts []string) []float32 {
	sequences := make([][]int, len(texts))
	for i, text := range texts {
		sequences[i] = enc.Encode(text)
	}
	padded := tokenizer.Pad(sequences, sentimentSeqLen)

	out := make([]float32, 0, len(texts)*sentimentSeqLen)
	for _, seq := range padded {
		for _, id := range seq {
			out = append(out, float32(id))
		}
	}
	return out
}

func oneHot(classes []int, numClasses int) []float32 {
	out := make([]float32, len(classes)*numClasses)
	for i, c := range classes {
		out[i*numClasses+c] = 1
	}
	return out
}

// sentimentCorpus deterministically assembles the review texts. Every 8th
// example per polarity is held out for the test split.
func sentimentCorpus() (trainTexts []string, trainClasses []int, testTexts []string, testClasses []int) {
	build := func(adjectives []string, class int) {
		i := 0
		for _, tmpl := range sentimentTemplates {
			for _, subject := range sentimentSubjects {
				for _, adj := range adjectives {
					text := fmt.Sprintf(tmpl, subject, adj)
					if i%8 == 7 {
						testTexts = append(testTexts, text)
						testClasses = append(testClasses, class)
					} else {
						trainTexts = append(trainTexts, text)
						trainClasses = append(trainClasses, class)
					}
					i++
				}
			}
		}
	}
	build(sentimentNegative, 0)
	build(sentimentPositive, 1)
	return trainTexts, trainClasses, testTexts, testClasses
}
