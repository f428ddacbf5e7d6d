package main

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/TwigSlot/twig-server/internal/entity"
	"github.com/TwigSlot/twig-server/internal/graph"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the graph store with demo data",
	Long: `Creates a demo user with a sample project, a few resources linked
by prerequisite edges, and a couple of tags. Intended for local development
against an empty store; running it twice creates a second set of vertices.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		client, err := graph.NewNeo4jClient(cfg.GraphConfig())
		if err != nil {
			return err
		}
		if err := client.Connect(ctx); err != nil {
			return err
		}
		defer client.Close(ctx)

		sess := client.Session(ctx)
		defer sess.Close(ctx)

		return seed(ctx, sess)
	},
}

func seed(ctx context.Context, sess graph.Session) error {
	user := entity.NewUser(uuid.NewString(), "demo")
	if err := user.Create(ctx, sess); err != nil {
		return err
	}
	userKey, _ := user.Key()
	slog.Info("created demo user", "key", int64(userKey), "username", user.Username)

	project := entity.NewProject("Learn Go", "A sample learning roadmap")
	if err := project.Create(ctx, sess, user); err != nil {
		return err
	}
	projectKey, _ := project.Key()
	slog.Info("created demo project", "key", int64(projectKey), "name", project.Name)

	resources := []*entity.Resource{
		entity.NewResource("A Tour of Go", "Interactive introduction", "https://go.dev/tour/"),
		entity.NewResource("Effective Go", "Style and idiom guide", "https://go.dev/doc/effective_go"),
		entity.NewResource("The Go Memory Model", "Happens-before semantics", "https://go.dev/ref/mem"),
	}
	for i, r := range resources {
		r.PosX = float64(i) * 200
		r.PosY = float64(i%2) * 120
		if err := r.Create(ctx, sess, project); err != nil {
			return err
		}
	}

	// tour -> effective -> memory model
	if _, err := resources[1].AddPrereq(ctx, sess, resources[0]); err != nil {
		return err
	}
	if _, err := resources[2].AddPrereq(ctx, sess, resources[1]); err != nil {
		return err
	}

	tags := []*entity.Tag{
		entity.NewTag("beginner", "#4caf50", 1),
		entity.NewTag("reference", "#2196f3", 2),
	}
	for _, t := range tags {
		if err := t.Create(ctx, sess, project); err != nil {
			return err
		}
	}

	if _, err := resources[0].AttachTag(ctx, sess, tags[0]); err != nil {
		return err
	}
	if _, err := resources[1].AttachTag(ctx, sess, tags[1]); err != nil {
		return err
	}
	if _, err := resources[2].AttachTag(ctx, sess, tags[1]); err != nil {
		return err
	}

	slog.Info("seed complete",
		"resources", len(resources),
		"tags", len(tags))
	return nil
}
