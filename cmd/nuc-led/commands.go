package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sweeney/nuc-led/internal/led"
)

func newGetCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:       "get [ring|power]",
		Short:     "Print the current LED state",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{led.RingID, led.PowerID},
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			ids := svc.IDs()
			if len(args) == 1 {
				ids = args
			}
			states := make([]led.State, 0, len(ids))
			for _, id := range ids {
				s, err := svc.Get(id)
				if err != nil {
					return err
				}
				states = append(states, s)
			}
			return printStates(cmd.OutOrStdout(), states, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newSetCmd(a *app) *cobra.Command {
	var (
		brightness int
		style      string
		colour     string
	)
	cmd := &cobra.Command{
		Use:       "set <ring|power>",
		Short:     "Change brightness, style or colour of one LED",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{led.RingID, led.PowerID},
		RunE: func(cmd *cobra.Command, args []string) error {
			var u led.Update
			f := cmd.Flags()
			if f.Changed("brightness") {
				u.Brightness = &brightness
			}
			if f.Changed("style") {
				u.Style = &style
			}
			if f.Changed("colour") {
				u.Colour = &colour
			}
			if u.Empty() {
				return fmt.Errorf("nothing to set: use --brightness, --style or --colour")
			}

			svc, err := a.service()
			if err != nil {
				return err
			}
			s, err := svc.Apply(args[0], u)
			if err != nil {
				return err
			}
			return printStates(cmd.OutOrStdout(), []led.State{s}, false)
		},
	}
	cmd.Flags().IntVarP(&brightness, "brightness", "b", 0, "Brightness 0-100 (clamped)")
	cmd.Flags().StringVarP(&style, "style", "s", "", "Style code, see 'nuc-led styles'")
	cmd.Flags().StringVar(&colour, "colour", "", "Colour name, see 'nuc-led colours'")
	return cmd
}

func newOffCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "off <ring|power|all>",
		Short:     "Turn LEDs off",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{led.RingID, led.PowerID, "all"},
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			ids := []string{args[0]}
			if args[0] == "all" {
				ids = svc.IDs()
			}
			states := make([]led.State, 0, len(ids))
			for _, id := range ids {
				s, err := svc.TurnOff(id)
				if err != nil {
					return err
				}
				states = append(states, s)
			}
			return printStates(cmd.OutOrStdout(), states, false)
		},
	}
}

func newStylesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "styles",
		Short: "List style codes",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, code := range led.Styles() {
				label, _ := led.StyleLabel(code)
				fmt.Fprintf(cmd.OutOrStdout(), "%-13s %s\n", code, label)
			}
		},
	}
}

func newColoursCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "colours <ring|power>",
		Aliases:   []string{"colors"},
		Short:     "List the colours an LED accepts",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{led.RingID, led.PowerID},
		RunE: func(cmd *cobra.Command, args []string) error {
			v, ok := led.VariantByID(args[0])
			if !ok {
				return fmt.Errorf("unknown led %q", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(v.ValidColours(), " "))
			return nil
		},
	}
}

func newSceneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scene [name]",
		Short: "Apply a named scene, or list scenes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				for _, name := range svc.SceneNames() {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			}
			states, err := svc.ApplyScene(args[0])
			if err != nil {
				return err
			}
			return printStates(cmd.OutOrStdout(), states, false)
		},
	}
}

func printStates(w io.Writer, states []led.State, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(states)
	}
	for _, s := range states {
		fmt.Fprintf(w, "%s: brightness=%d style=%s colour=%s\n", s.ID, s.Brightness, s.Style, s.Colour)
	}
	return nil
}
