package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"earshot/internal/client"
	"earshot/internal/contextview"
	"earshot/internal/language"
	"earshot/internal/session"
	"earshot/internal/store"
)

func newContextsCommand(ctx *commandContext) *cobra.Command {
	var offset, limit int

	cmd := &cobra.Command{
		Use:     "contexts",
		Aliases: []string{"ls"},
		Short:   "List contexts",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := ctx.newClient()
			if err != nil {
				return err
			}
			items, err := c.ListContexts(cmd.Context(), offset, limit)
			if err != nil {
				return wrapRequestError(err, c.BaseURL())
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, items)
			}
			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "No contexts")
				return nil
			}
			rows := make([][]string, 0, len(items))
			for _, item := range items {
				rows = append(rows, []string{strconv.FormatInt(item.ID, 10), item.Name, item.Date, item.Desc})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Name", "Date", "Description"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
				60,
			))
			return nil
		},
	}
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of contexts to skip")
	cmd.Flags().IntVar(&limit, "limit", store.DefaultListLimit, "Maximum contexts to list (1-100)")
	return cmd
}

func newCreateCommand(ctx *commandContext) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := ctx.newClient()
			if err != nil {
				return err
			}
			created, err := c.CreateContext(cmd.Context(), args[0], description)
			if err != nil {
				return wrapRequestError(err, c.BaseURL())
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, created)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created context %d (%s)\n", created.ID, created.Name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "Initial description")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <context-id>",
		Short: "Show codewords, speaker graph and audio of a context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.openSession(cmd, args[0])
			if err != nil {
				return err
			}
			snap := s.Snapshot()
			if ctx.jsonOutput() {
				return writeJSON(cmd, snap)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderSnapshot(cmd, s.ContextID(), snap))
			return nil
		},
	}
}

func newTranscriptCommand(ctx *commandContext) *cobra.Command {
	var both bool

	cmd := &cobra.Command{
		Use:   "transcript <context-id> <audio#>",
		Short: "Print the transcript of one audio sample",
		Long:  "Print the transcript of one audio sample. Audio samples are numbered from 1 in the order `show` lists them.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := strconv.Atoi(args[1])
			if err != nil || number < 1 {
				return fmt.Errorf("invalid audio number %q", args[1])
			}
			s, err := ctx.openSession(cmd, args[0])
			if err != nil {
				return err
			}
			audio, err := s.Audio(number - 1)
			if err != nil {
				return err
			}
			if both {
				return printBothTranscripts(cmd, ctx.jsonOutput(), s, number-1, audio)
			}
			rows, err := s.Transcript(number - 1)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, rows)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTranscript(cmd, audio, rows, s.Language().Current()))
			return nil
		},
	}
	cmd.Flags().BoolVar(&both, "both", false, "Print the transcript in the selected language, then in the other one")
	return cmd
}

// printBothTranscripts renders the transcript, toggles the display language
// and renders again once the change is observed.
func printBothTranscripts(cmd *cobra.Command, asJSON bool, s *session.Session, index int, audio contextview.Audio) error {
	setting := s.Language()
	updates, cancel := setting.Subscribe()
	defer cancel()

	byLang := make(map[language.Code][]contextview.TranscriptRow, 2)
	render := func(lang language.Code) error {
		rows, err := s.Transcript(index)
		if err != nil {
			return err
		}
		if asJSON {
			byLang[lang] = rows
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), renderTranscript(cmd, audio, rows, lang))
		return nil
	}

	if err := render(setting.Current()); err != nil {
		return err
	}
	setting.Toggle()
	select {
	case lang := <-updates:
		if !asJSON {
			fmt.Fprintln(cmd.OutOrStdout())
		}
		if err := render(lang); err != nil {
			return err
		}
	case <-cmd.Context().Done():
		return cmd.Context().Err()
	}
	if asJSON {
		return writeJSON(cmd, byLang)
	}
	return nil
}

func newUploadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <context-id> <file>",
		Short: "Upload an audio sample to a context",
		Long:  "Upload an audio sample. The backend transcribes and translates it before responding, so this can take a while.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseContextID(args[0])
			if err != nil {
				return err
			}
			c, err := ctx.newClient()
			if err != nil {
				return err
			}
			resp, err := c.UploadFile(cmd.Context(), id, args[1])
			if err != nil {
				return wrapRequestError(err, c.BaseURL())
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, resp)
			}
			out := cmd.OutOrStdout()
			name := args[1]
			if resp.Audio != nil {
				name = resp.Audio.Name
			}
			fmt.Fprintf(out, "Uploaded %s to context %d: %d utterances\n", name, id, resp.Utterances)
			if len(resp.NewSpeakers) > 0 {
				fmt.Fprintf(out, "New speakers: %s\n", strings.Join(resp.NewSpeakers, ", "))
			}
			for _, w := range resp.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w.Message)
			}
			return nil
		},
	}
}

func (c *commandContext) openSession(cmd *cobra.Command, rawID string) (*session.Session, error) {
	id, err := parseContextID(rawID)
	if err != nil {
		return nil, err
	}
	lang, err := c.language()
	if err != nil {
		return nil, err
	}
	backend, err := c.newClient()
	if err != nil {
		return nil, err
	}
	s := session.New(backend, id, lang, c.cliLogger(cmd))
	if _, err := s.Refresh(cmd.Context()); err != nil {
		if client.IsNotFound(err) {
			return nil, fmt.Errorf("context %d not found", id)
		}
		return nil, wrapRequestError(err, backend.BaseURL())
	}
	return s, nil
}

func parseContextID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid context id %q", raw)
	}
	return id, nil
}

func renderSnapshot(cmd *cobra.Command, id int64, snap *session.Snapshot) string {
	w := cmd.OutOrStdout()
	var b strings.Builder

	fmt.Fprintf(&b, "%s (context %d)\n", heading(w, snap.Name), id)
	if desc := strings.TrimSpace(snap.Description); desc != "" {
		fmt.Fprintf(&b, "%s\n", desc)
	}

	fmt.Fprintf(&b, "\n%s\n", heading(w, "Codewords"))
	if len(snap.Projection.CodewordRows) == 0 {
		b.WriteString("No codewords\n")
	} else {
		rows := make([][]string, 0, len(snap.Projection.CodewordRows))
		for _, row := range snap.Projection.CodewordRows {
			rows = append(rows, []string{row.Word, row.Meaning})
		}
		b.WriteString(renderTable([]string{"Word", "Meaning"}, rows, nil, 60) + "\n")
	}

	fmt.Fprintf(&b, "\n%s\n", heading(w, "Speakers"))
	if len(snap.Projection.Nodes) == 0 {
		b.WriteString("No speakers\n")
	} else {
		descriptions := make(map[string]string, len(snap.Speakers))
		for _, speaker := range snap.Speakers {
			descriptions[speaker.ID] = speaker.Description
		}
		labels := make(map[string]string, len(snap.Projection.Nodes))
		rows := make([][]string, 0, len(snap.Projection.Nodes))
		for _, node := range snap.Projection.Nodes {
			if _, ok := labels[node.ID]; !ok {
				labels[node.ID] = node.Label
			}
			rows = append(rows, []string{node.ID, node.Label, descriptions[node.ID]})
		}
		b.WriteString(renderTable([]string{"ID", "Name", "Description"}, rows, []columnAlignment{alignRight}, 60) + "\n")
		for _, edge := range snap.Projection.Edges {
			fmt.Fprintf(&b, "  %s -> %s\n", labels[edge.Source], labels[edge.Target])
		}
	}

	fmt.Fprintf(&b, "\n%s\n", heading(w, "Audio"))
	if len(snap.Projection.Audios) == 0 {
		b.WriteString("No audio samples\n")
	} else {
		rows := make([][]string, 0, len(snap.Projection.Audios))
		for i, audio := range snap.Projection.Audios {
			rows = append(rows, []string{strconv.Itoa(i + 1), audio.Name, audio.Description, transcriptState(audio)})
		}
		b.WriteString(renderTable(
			[]string{"#", "Name", "Description", "Transcript"},
			rows,
			[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
			60,
		) + "\n")
	}
	return b.String()
}

func transcriptState(audio contextview.Audio) string {
	if audio.Utterances == nil {
		return "none"
	}
	return strconv.Itoa(len(audio.Utterances)) + " lines"
}

func renderTranscript(cmd *cobra.Command, audio contextview.Audio, rows []contextview.TranscriptRow, lang language.Code) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s]\n", heading(cmd.OutOrStdout(), audio.Name), language.DisplayName(string(lang)))
	if audio.Description != "" {
		fmt.Fprintf(&b, "%s\n", audio.Description)
	}
	if len(rows) == 0 {
		b.WriteString("No transcript\n")
		return b.String()
	}
	table := make([][]string, 0, len(rows))
	for _, row := range rows {
		table = append(table, []string{row.Timestamp, row.Speaker, row.Content})
	}
	b.WriteString(renderTable([]string{"Time", "Speaker", "Text"}, table, nil, 80) + "\n")
	return b.String()
}
