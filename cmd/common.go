/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"

	"github.com/valpere/newstran/internal/detector"
	"github.com/valpere/newstran/internal/pipeline"
	"github.com/valpere/newstran/internal/reconciler"
	"github.com/valpere/newstran/internal/store"
	"github.com/valpere/newstran/internal/translator"
	"github.com/valpere/newstran/internal/validator"
)

func databasePath() string {
	if dbPath != "" {
		return dbPath
	}
	return cfg.DBPath
}

func openStore() (*store.Store, error) {
	db, err := store.New(databasePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// buildTranslator constructs the named translation service from the
// loaded configuration.
func buildTranslator(service string) (translator.Translator, error) {
	switch service {
	case "anthropic":
		if cfg.Services.Anthropic.APIKey == "" {
			return nil, fmt.Errorf("anthropic API key not configured (set NEWSTRAN_SERVICES_ANTHROPIC_API_KEY)")
		}
		return translator.NewAnthropicTranslator(
			cfg.Services.Anthropic.APIKey,
			cfg.Services.Anthropic.Model,
			cfg.Services.Anthropic.BaseURL), nil
	case "ollama":
		return translator.NewOllamaTranslator(
			cfg.Services.Ollama.BaseURL,
			cfg.Services.Ollama.Model), nil
	case "openrouter":
		if cfg.Services.OpenRouter.APIKey == "" {
			return nil, fmt.Errorf("openrouter API key not configured (set NEWSTRAN_SERVICES_OPENROUTER_API_KEY)")
		}
		return translator.NewOpenRouterTranslator(
			cfg.Services.OpenRouter.APIKey,
			cfg.Services.OpenRouter.BaseURL,
			cfg.Services.OpenRouter.Model), nil
	default:
		return nil, fmt.Errorf("unknown translation service: %s", service)
	}
}

// buildEngine assembles the pipeline around the named service, wiring
// the language validator and, when configured, the seam smoother.
func buildEngine(service string) (*pipeline.Engine, error) {
	svc, err := buildTranslator(service)
	if err != nil {
		return nil, err
	}

	eng := pipeline.New(svc, cfg.PipelineConfig(), logger)

	if cfg.Pipeline.TargetLang == "ko" && cfg.Pipeline.SourceLang == "en" {
		eng.SetValidator(validator.New(detector.NewEnglishKorean()))
	} else {
		eng.SetValidator(validator.New(detector.New()))
	}

	if cfg.Pipeline.Smooth {
		smoother := reconciler.NewOllamaSmoother(
			cfg.Services.Ollama.SmoothModel,
			cfg.Services.Ollama.BaseURL)
		eng.SetReconciler(reconciler.New(smoother, cfg.Pipeline.SeamWindow, logger))
	}

	return eng, nil
}

func truncateText(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
