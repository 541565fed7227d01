package cli

import (
	"os"

	"github.com/roboco-io/shlokstudy/internal/audio"
	"github.com/roboco-io/shlokstudy/internal/catalog"
	"github.com/roboco-io/shlokstudy/internal/config"
	"github.com/roboco-io/shlokstudy/internal/parser"
	"github.com/roboco-io/shlokstudy/internal/quiz"
)

func parserOptions(cfg *config.Config) parser.Options {
	opts := parser.DefaultOptions()
	if len(cfg.Content.ProseMarkers) > 0 {
		opts.ProseMarkers = cfg.Content.ProseMarkers
	}
	return opts
}

func openCatalog(cfg *config.Config) *catalog.Catalog {
	return catalog.New(os.DirFS(cfg.Content.Dir),
		catalog.WithIndexFile(cfg.Content.ClassesIndex),
		catalog.WithParserOptions(parserOptions(cfg)),
		catalog.WithLogger(logger),
	)
}

func quizOptions(cfg *config.Config) quiz.Options {
	q := cfg.Quiz
	return quiz.Options{
		Temperature:    q.Temperature,
		ClassPoolSize:  q.ClassPoolSize,
		ReviewPoolSize: q.ReviewPoolSize,
		ReviewEvery:    q.ReviewEvery,
		ReviewSpan:     q.ReviewSpan,
	}
}

func audioResolver(cfg *config.Config) (*audio.Resolver, error) {
	mapping := audio.DefaultMapping()
	if cfg.Audio.MappingFile != "" {
		m, err := audio.LoadMapping(cfg.Audio.MappingFile)
		if err != nil {
			return nil, err
		}
		mapping = m
	}
	return audio.NewResolver(cfg.Audio.ContainerURL, mapping), nil
}
