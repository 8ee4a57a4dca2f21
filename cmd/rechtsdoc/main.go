package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rechtsdoc/internal/config"
	"rechtsdoc/internal/document"
	"rechtsdoc/internal/llm"
	"rechtsdoc/internal/pipeline"
	"rechtsdoc/internal/profile"
	"rechtsdoc/internal/render"
	"rechtsdoc/internal/rules"
	"rechtsdoc/internal/storage"
)

var (
	rootCmd = &cobra.Command{
		Use:   "rechtsdoc",
		Short: "Generator für Impressum, Datenschutzerklärung und Cookie-Texte",
	}
	dbPath      string
	profilePath string
	profileID   string
	docTypeFlag string
	outDir      string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Path to the SQLite database (defaults to config)")

	planCmd.Flags().StringVarP(&profilePath, "profile", "p", "", "Path to a site profile JSON file")
	planCmd.Flags().StringVar(&profileID, "profile-id", "", "ID of a stored site profile")
	planCmd.Flags().StringVarP(&docTypeFlag, "type", "t", "", "Document type (impressum|datenschutz|cookie_policy|cookie_consent)")
	planCmd.MarkFlagRequired("type")

	generateCmd.Flags().StringVarP(&profilePath, "profile", "p", "", "Path to a site profile JSON file")
	generateCmd.Flags().StringVar(&profileID, "profile-id", "", "ID of a stored site profile")
	generateCmd.Flags().StringVarP(&docTypeFlag, "type", "t", "", "Document type (impressum|datenschutz|cookie_policy|cookie_consent)")
	generateCmd.Flags().StringVarP(&outDir, "out", "o", "", "Directory to write text/HTML artifacts to")
	generateCmd.MarkFlagRequired("type")

	renderCmd.Flags().StringVarP(&outDir, "out", "o", "", "Directory to write text/HTML artifacts to")

	profileCmd.AddCommand(profileSeedCmd, profileListCmd, profilePatchCmd)
	rootCmd.AddCommand(planCmd, generateCmd, renderCmd, profileCmd)
}

func initStore() (*storage.Store, *config.Config) {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	path := dbPath
	if path == "" {
		path = cfg.Database.Path
	}
	store, err := storage.NewStore(path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	return store, cfg
}

func initGenerator(ctx context.Context, cfg *config.Config) llm.Generator {
	switch cfg.AI.Provider {
	case "gemini":
		gen, err := llm.NewGeminiClient(ctx, cfg.AI.APIKey, cfg.AI.Model)
		if err != nil {
			log.Fatalf("Failed to create Gemini client: %v", err)
		}
		return gen
	case "openai":
		return llm.NewOpenAIClient(cfg.AI.APIKey, cfg.AI.Model, cfg.AI.BaseURL)
	default:
		log.Fatalf("Unknown AI provider: %q", cfg.AI.Provider)
		return nil
	}
}

// loadProfile resolves the profile either from a JSON file or the store.
func loadProfile(ctx context.Context, store *storage.Store) *profile.SiteProfile {
	if profilePath != "" {
		p, err := profile.Load(profilePath)
		if err != nil {
			log.Fatalf("Failed to load profile: %v", err)
		}
		return p
	}
	if profileID != "" {
		p, err := store.GetProfile(ctx, profileID)
		if err != nil {
			log.Fatalf("Failed to load profile: %v", err)
		}
		return p
	}
	log.Fatal("Either --profile or --profile-id is required")
	return nil
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Preview the section plan for a document type without calling the AI",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		store, _ := initStore()
		defer store.Close()

		docType, err := rules.ParseDocumentType(docTypeFlag)
		if err != nil {
			log.Fatalf("%v", err)
		}

		p := loadProfile(ctx, store)
		plan, err := rules.GeneratePlan(docType, p)
		if err != nil {
			log.Fatalf("Failed to build plan: %v", err)
		}

		fmt.Printf("📋 %s (%s)\n\n", plan.Title, plan.Type)
		for i, section := range plan.Sections {
			marker := "optional"
			if section.Required {
				marker = "required"
			}
			status := "active"
			if !section.Active(p) {
				status = "inactive"
			}
			fmt.Printf("%2d. %s [%s, %s]\n", i+1, section.Heading, marker, status)
			if len(section.Placeholders) > 0 {
				fmt.Printf("    Platzhalter: %s\n", strings.Join(section.Placeholders, ", "))
			}
			if len(section.LegalBasis) > 0 {
				fmt.Printf("    Rechtsgrundlage: %s\n", strings.Join(section.LegalBasis, ", "))
			}
		}
		if len(plan.MissingInputs) > 0 {
			fmt.Printf("\n⚠ Fehlende Eingaben: %s\n", strings.Join(plan.MissingInputs, ", "))
		}
		for _, warning := range plan.Warnings {
			fmt.Printf("⚠ %s\n", warning)
		}
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a document for a site profile and store the artifacts",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		store, cfg := initStore()
		defer store.Close()

		docType, err := rules.ParseDocumentType(docTypeFlag)
		if err != nil {
			log.Fatalf("%v", err)
		}

		p := loadProfile(ctx, store)
		if p.ID == "" {
			if _, err := store.SaveProfile(ctx, p); err != nil {
				log.Fatalf("Failed to save profile: %v", err)
			}
		}

		logger, _ := zap.NewProduction()
		defer logger.Sync()

		generator := initGenerator(ctx, cfg)
		pl := pipeline.New(generator, store, logger)

		fmt.Printf("🚀 Generating %s...\n", docType)
		result, err := pl.Run(ctx, docType, p)
		if err != nil {
			log.Fatalf("Generation failed: %v", err)
		}

		fmt.Printf("✅ %q generated (version %d, %d sections, ~%d tokens)\n",
			result.Document.Title, result.Record.Version, len(result.Document.Sections), result.TokensUsed)

		if outDir != "" {
			writeArtifacts(result.Record.ID, result.Text, result.Page)
		}
	},
}

var renderCmd = &cobra.Command{
	Use:   "render [document-id]",
	Short: "Re-render a stored document to text and HTML",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		store, _ := initStore()
		defer store.Close()

		rec, err := store.GetDocument(ctx, args[0])
		if err != nil {
			log.Fatalf("Failed to load document: %v", err)
		}

		doc, err := document.Parse(string(rec.Content))
		if err != nil {
			log.Fatalf("Stored document is invalid: %v", err)
		}

		if outDir != "" {
			writeArtifacts(rec.ID, render.Text(doc), render.Page(doc))
			return
		}
		fmt.Println(render.Text(doc))
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage stored site profiles",
}

var profileSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Store a demo site profile for trial runs",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		store, _ := initStore()
		defer store.Close()

		id, err := store.SaveProfile(ctx, profile.Demo())
		if err != nil {
			log.Fatalf("Failed to seed profile: %v", err)
		}
		fmt.Printf("✅ Demo profile stored: %s\n", id)
	},
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored site profiles",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		store, _ := initStore()
		defer store.Close()

		profiles, err := store.ListProfiles(ctx)
		if err != nil {
			log.Fatalf("Failed to list profiles: %v", err)
		}
		for _, p := range profiles {
			fmt.Printf("%s  %s (%s)\n", p.ID, p.Name, p.Domain)
		}
	},
}

var profilePatchCmd = &cobra.Command{
	Use:   "patch [profile-id] [patch-json]",
	Short: "Apply a shallow-merge JSON patch to a stored profile",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		store, _ := initStore()
		defer store.Close()

		var patch map[string]any
		if err := json.Unmarshal([]byte(args[1]), &patch); err != nil {
			log.Fatalf("Invalid patch JSON: %v", err)
		}

		p, err := store.PatchProfile(ctx, args[0], patch)
		if err != nil {
			log.Fatalf("Failed to patch profile: %v", err)
		}
		out, _ := json.MarshalIndent(p, "", "  ")
		fmt.Println(string(out))
	},
}

func writeArtifacts(id, text, page string) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}
	txtPath := filepath.Join(outDir, id+".txt")
	htmlPath := filepath.Join(outDir, id+".html")
	if err := os.WriteFile(txtPath, []byte(text), 0644); err != nil {
		log.Fatalf("Failed to write %s: %v", txtPath, err)
	}
	if err := os.WriteFile(htmlPath, []byte(page), 0644); err != nil {
		log.Fatalf("Failed to write %s: %v", htmlPath, err)
	}
	fmt.Printf("💾 Artifacts written: %s, %s\n", txtPath, htmlPath)
}
