package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"earshot/internal/client"
	"earshot/internal/contextview"
	"earshot/internal/session"
)

func newSpeakerCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "speaker",
		Short: "Manage and inspect speakers of a context",
	}
	cmd.AddCommand(newSpeakerAddCommand(ctx))
	cmd.AddCommand(newSpeakerShowCommand(ctx))
	return cmd
}

func newSpeakerAddCommand(ctx *commandContext) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "add <context-id> <name>",
		Short: "Add a speaker to a context",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withContextClient(cmd, args[0], func(c *client.Client, id int64) error {
				speaker, err := c.AddSpeaker(cmd.Context(), id, args[1], description)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, speaker)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added speaker %s (%s) to context %d\n", speaker.ID, speaker.Name, id)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "Speaker description")
	return cmd
}

func newSpeakerShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <context-id> <speaker-id>",
		Short: "Show a speaker and its place in the hierarchy",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.openSession(cmd, args[0])
			if err != nil {
				return err
			}
			speaker, ok := s.Speaker(strings.TrimSpace(args[1]))
			if !ok {
				return fmt.Errorf("speaker %s not found in context %d", args[1], s.ContextID())
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, speaker)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderSpeaker(cmd, speaker, s.Snapshot()))
			return nil
		},
	}
}

func newLinkCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "link <context-id> <parent> <child>",
		Short: "Record that one speaker reports to another",
		Long:  "Record a parent -> child relation by speaker name. Names that match no speaker are stored but draw no edge.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withContextClient(cmd, args[0], func(c *client.Client, id int64) error {
				entry, err := c.AddHierarchy(cmd.Context(), id, args[1], args[2])
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, entry)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Linked %s -> %s in context %d\n", entry.ParentName, entry.ChildName, id)
				return nil
			})
		},
	}
}

func newCodewordCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "codeword",
		Short: "Manage codewords of a context",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <context-id> <word> <meaning>",
		Short: "Add a codeword to a context",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withContextClient(cmd, args[0], func(c *client.Client, id int64) error {
				word, err := c.AddCodeword(cmd.Context(), id, args[1], args[2])
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, word)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added codeword %q to context %d\n", word.Word, id)
				return nil
			})
		},
	})
	return cmd
}

// withContextClient parses the context id, builds a client and maps request
// failures to CLI errors.
func (c *commandContext) withContextClient(cmd *cobra.Command, rawID string, fn func(*client.Client, int64) error) error {
	id, err := parseContextID(rawID)
	if err != nil {
		return err
	}
	backend, err := c.newClient()
	if err != nil {
		return err
	}
	if err := fn(backend, id); err != nil {
		if client.IsNotFound(err) {
			return fmt.Errorf("context %d not found", id)
		}
		return wrapRequestError(err, backend.BaseURL())
	}
	return nil
}

func renderSpeaker(cmd *cobra.Command, speaker contextview.Speaker, snap *session.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (speaker %s)\n", heading(cmd.OutOrStdout(), speaker.Name), speaker.ID)
	if desc := strings.TrimSpace(speaker.Description); desc != "" {
		fmt.Fprintf(&b, "%s\n", desc)
	}
	if snap == nil {
		return b.String()
	}
	labels := make(map[string]string, len(snap.Projection.Nodes))
	for _, node := range snap.Projection.Nodes {
		if _, ok := labels[node.ID]; !ok {
			labels[node.ID] = node.Label
		}
	}
	var reportsTo, commands []string
	for _, edge := range snap.Projection.Edges {
		switch speaker.ID {
		case edge.Target:
			reportsTo = append(reportsTo, labels[edge.Source])
		case edge.Source:
			commands = append(commands, labels[edge.Target])
		}
	}
	if len(reportsTo) > 0 {
		fmt.Fprintf(&b, "Reports to: %s\n", strings.Join(reportsTo, ", "))
	}
	if len(commands) > 0 {
		fmt.Fprintf(&b, "Commands: %s\n", strings.Join(commands, ", "))
	}
	return b.String()
}
