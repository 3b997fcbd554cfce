package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/albertus-andito/fake-news-detection/internal/core/model"
	"github.com/albertus-andito/fake-news-detection/internal/core/resolve"
	"github.com/albertus-andito/fake-news-detection/internal/core/session"
)

// --- check command ---

var (
	checkFile  string
	checkText  string
	checkURL   string
	checkScope string
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Classify triples, text, or an article URL against the knowledge graph",
	RunE: func(cmd *cobra.Command, args []string) error {
		sources := 0
		for _, s := range []string{checkFile, checkText, checkURL} {
			if s != "" {
				sources++
			}
		}
		if sources != 1 {
			return fmt.Errorf("exactly one of --file, --text or --url is required")
		}
		scope, err := model.ParseExtractionScope(checkScope)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		var view session.View
		switch {
		case checkFile != "":
			triples, err := readTriplesFile(checkFile)
			if err != nil {
				return err
			}
			view, err = verifier.CheckTriples(ctx, triples)
			if err != nil {
				return err
			}
		case checkText != "":
			view, err = verifier.CheckText(ctx, checkText, scope)
			if err != nil {
				return err
			}
		default:
			view, err = verifier.CheckURL(ctx, checkURL, scope)
			if err != nil {
				return err
			}
		}

		fmt.Fprintln(cmd.OutOrStdout(), renderView(view))
		return nil
	},
}

// --- add command ---

var (
	addFile  string
	addForce bool
)

var addCmd = &cobra.Command{
	Use:   "add [subject relation object...]",
	Short: "Add triples from your own knowledge to the knowledge graph",
	RunE: func(cmd *cobra.Command, args []string) error {
		triples, err := triplesFromArgs(addFile, args)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		if addForce {
			if !confirm(cmd, fmt.Sprintf("Force insert %d triple(s), ignoring conflicts?", len(triples))) {
				return errAborted
			}
			if err := verifier.Resolver.AddTriples(ctx, triples, true); err != nil {
				return err
			}
			fmt.Fprintln(out, successStyle.Render("Added to Knowledge Graph"))
			return nil
		}

		err = verifier.Resolver.AddTriples(ctx, triples, false)
		var conflict *resolve.ConflictError
		if errors.As(err, &conflict) {
			fmt.Fprintln(out, renderConflicts(conflict.Conflicts))
			if !confirm(cmd, "Insert anyway?") {
				return errAborted
			}
			err = verifier.Resolver.AddTriples(ctx, triples, true)
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(out, successStyle.Render("Added to Knowledge Graph"))
		return nil
	},
}

// --- remove command ---

var removeCmd = &cobra.Command{
	Use:   "remove subject relation object...",
	Short: "Remove a triple from the knowledge graph",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		t := tripleFromArgs(args)
		ctx := cmd.Context()

		err := verifier.Resolver.RemoveTriple(ctx, t, assumeYes)
		if c, ok := resolve.IsConfirmation(err); ok {
			if !confirm(cmd, c.Prompt()) {
				return errAborted
			}
			err = verifier.Resolver.RemoveTriple(ctx, t, true)
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Removed from Knowledge Graph"))
		return nil
	},
}

// --- equate command ---

var equateCmd = &cobra.Command{
	Use:   "equate entity-a entity-b",
	Short: "Declare two entity URIs the same",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirm(cmd, fmt.Sprintf("Declare %s the same as %s?", args[0], args[1])) {
			return errAborted
		}
		if err := verifier.Resolver.Equate(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Entities equated"))
		return nil
	},
}

// --- entity command ---

var entityCmd = &cobra.Command{
	Use:   "entity subject",
	Short: "List the triples the knowledge graph holds about a subject",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		triples, err := verifier.Entity(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderTriples(args[0], triples))
		return nil
	},
}

// --- article commands ---

var articlesCmd = &cobra.Command{
	Use:   "articles",
	Short: "List extracted articles, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		articles, err := verifier.ListArticles(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderArticles(articles))
		return nil
	},
}

var pendingCmd = &cobra.Command{
	Use:   "pending source",
	Short: "Classify the pending triples of an article",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		view, err := verifier.SelectArticle(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderView(view))
		return nil
	},
}

var (
	articleScope string
	autoAdd      bool
)

var submitCmd = &cobra.Command{
	Use:   "submit url",
	Short: "Submit an article URL for extraction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scope, err := model.ParseExtractionScope(articleScope)
		if err != nil {
			return err
		}
		view, err := verifier.SubmitArticle(cmd.Context(), args[0], scope, autoAdd)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderView(view))
		return nil
	},
}

var waitForUpdate bool

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Trigger a knowledge graph update from newly scraped articles",
	RunE: func(cmd *cobra.Command, args []string) error {
		scope, err := model.ParseExtractionScope(articleScope)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		if !waitForUpdate {
			job, err := verifier.Watcher.Trigger(ctx, scope, autoAdd)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, renderJob(job))
			return nil
		}

		job, err := verifier.RunUpdate(ctx, scope, autoAdd)
		if job.ID != "" {
			fmt.Fprintln(out, renderJob(job))
		}
		return err
	},
}

var errAborted = errors.New("aborted")

func init() {
	checkCmd.Flags().StringVarP(&checkFile, "file", "f", "", "YAML file of triples")
	checkCmd.Flags().StringVar(&checkText, "text", "", "Text to extract triples from")
	checkCmd.Flags().StringVar(&checkURL, "url", "", "Article URL to extract triples from")
	checkCmd.Flags().StringVar(&checkScope, "scope", string(model.ScopeNounPhrases), "Extraction scope: noun_phrases, named_entities or all")

	addCmd.Flags().StringVarP(&addFile, "file", "f", "", "YAML file of triples")
	addCmd.Flags().BoolVar(&addForce, "force", false, "Insert even when the triples conflict")

	for _, c := range []*cobra.Command{submitCmd, updateCmd} {
		c.Flags().StringVar(&articleScope, "scope", string(model.ScopeNounPhrases), "Extraction scope: noun_phrases, named_entities or all")
		c.Flags().BoolVar(&autoAdd, "auto-add", false, "Insert non-conflicting triples automatically")
	}
	updateCmd.Flags().BoolVar(&waitForUpdate, "wait", false, "Poll until the update finishes, then refresh the article list")
}

func triplesFromArgs(file string, args []string) ([]model.Triple, error) {
	switch {
	case file != "" && len(args) > 0:
		return nil, fmt.Errorf("use either --file or a triple on the command line")
	case file != "":
		return readTriplesFile(file)
	case len(args) < 3:
		return nil, fmt.Errorf("a triple needs a subject, a relation and at least one object")
	default:
		return []model.Triple{tripleFromArgs(args)}, nil
	}
}

func tripleFromArgs(args []string) model.Triple {
	return model.Triple{Subject: args[0], Relation: args[1], Objects: args[2:]}
}

func readTriplesFile(path string) ([]model.Triple, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading triples: %w", err)
	}
	return parseTriples(data)
}

// confirm asks a y/N question on the command's input. --yes answers it.
func confirm(cmd *cobra.Command, question string) bool {
	if assumeYes {
		return true
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", question)
	return readAnswer(cmd.InOrStdin())
}

func trimLower(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}
