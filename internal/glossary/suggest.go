package glossary

import (
	"context"
	"fmt"

	"cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

// SuggestTargets renders isolated terms into the target language with
// Google Cloud Translation. Single terms need no surrounding context,
// which is the one case a plain MT API serves well; results seed the
// stored domain list and are reviewed before use.
func SuggestTargets(ctx context.Context, credentialsFile string, terms []string, target string) (map[string]string, error) {
	if len(terms) == 0 {
		return map[string]string{}, nil
	}

	targetTag, err := language.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("invalid target language: %w", err)
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := translate.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	translations, err := client.Translate(ctx, terms, targetTag, &translate.Options{
		Source: language.English,
	})
	if err != nil {
		return nil, fmt.Errorf("translation failed: %w", err)
	}
	if len(translations) != len(terms) {
		return nil, fmt.Errorf("got %d translations for %d terms", len(translations), len(terms))
	}

	out := make(map[string]string, len(terms))
	for i, tr := range translations {
		out[terms[i]] = tr.Text
	}
	return out, nil
}
