package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/gzhole/toolscout/internal/registry"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage tool catalog overlays",
	Long: `Manage catalog overlay packs.

Overlays are YAML files of extra or replacement tool entries, for tools an
organisation maintains itself. They live in ~/.toolscout/catalog/ (or
--catalog-dir) and are merged over the built-in catalog on every scan.
Both .yaml and .yml files are read. A file whose name starts with an
underscore is disabled. Overlays are addressed by file name without the
extension, or by the name they declare.

Examples:
  toolscout catalog list              # List installed overlays
  toolscout catalog enable in-house   # Enable an overlay
  toolscout catalog disable in-house  # Disable an overlay
  toolscout catalog show in-house     # Print an overlay`,
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed catalog overlays",
	RunE:  catalogList,
}

var catalogEnableCmd = &cobra.Command{
	Use:   "enable <overlay-name>",
	Short: "Enable a disabled overlay",
	Args:  cobra.ExactArgs(1),
	RunE:  catalogEnable,
}

var catalogDisableCmd = &cobra.Command{
	Use:   "disable <overlay-name>",
	Short: "Disable an overlay (prefix with underscore)",
	Args:  cobra.ExactArgs(1),
	RunE:  catalogDisable,
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <overlay-name>",
	Short: "Print an overlay file",
	Args:  cobra.ExactArgs(1),
	RunE:  catalogShow,
}

func init() {
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogEnableCmd)
	catalogCmd.AddCommand(catalogDisableCmd)
	catalogCmd.AddCommand(catalogShowCmd)
	rootCmd.AddCommand(catalogCmd)
}

func overlayDir(cmd *cobra.Command) (string, error) {
	dir := runtimeFrom(cmd).cfg.Catalog.Dir
	if dir == "" {
		return "", fmt.Errorf("no catalog directory configured")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return dir, nil
}

func catalogList(cmd *cobra.Command, args []string) error {
	rt := runtimeFrom(cmd)
	out := cmd.OutOrStdout()
	dir, err := overlayDir(cmd)
	if err != nil {
		return err
	}

	_, infos, err := registry.LoadOverlays(dir, nil)
	if err != nil {
		return fmt.Errorf("failed to load overlays: %w", err)
	}

	if len(infos) == 0 {
		fmt.Fprintln(out, "No catalog overlays installed.")
		fmt.Fprintf(out, "\nTo add tools, copy YAML files to: %s\n", dir)
		return nil
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"", "Overlay", "File", "Tools", "Version", "Author"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	var broken []registry.OverlayInfo
	for _, info := range infos {
		status := rt.icon("\xe2\x9c\x85", "+") // check mark
		if !info.Enabled || info.Error != "" {
			status = rt.icon("\xe2\x9d\x8c", "-") // cross mark
		}
		if info.Error != "" {
			broken = append(broken, info)
		}
		table.Append([]string{status, info.Name, filepath.Base(info.Path), strconv.Itoa(info.ToolCount), info.Version, info.Author})
	}
	table.Render()
	for _, info := range broken {
		fmt.Fprintf(out, "%s: %s\n", filepath.Base(info.Path), info.Error)
	}
	fmt.Fprintf(out, "\nCatalog directory: %s\n", dir)
	return nil
}

func catalogEnable(cmd *cobra.Command, args []string) error {
	return setOverlayEnabled(cmd, args[0], true)
}

func catalogDisable(cmd *cobra.Command, args []string) error {
	return setOverlayEnabled(cmd, args[0], false)
}

// setOverlayEnabled renames an overlay file to add or drop the "_" prefix
// that disables it. The extension is kept.
func setOverlayEnabled(cmd *cobra.Command, name string, enable bool) error {
	rt := runtimeFrom(cmd)
	out := cmd.OutOrStdout()

	info, err := findOverlay(cmd, name)
	if err != nil {
		return err
	}

	state := "disabled"
	if enable {
		state = "enabled"
	}
	if info.Enabled == enable {
		fmt.Fprintf(out, "Overlay '%s' is already %s.\n", name, state)
		return nil
	}

	dir, file := filepath.Split(info.Path)
	target := "_" + file
	if enable {
		target = strings.TrimPrefix(file, "_")
	}
	if err := os.Rename(info.Path, filepath.Join(dir, target)); err != nil {
		return fmt.Errorf("failed to %s overlay: %w", strings.TrimSuffix(state, "d"), err)
	}

	icon := rt.icon("\xe2\x9d\x8c", "-") // cross mark
	if enable {
		icon = rt.icon("\xe2\x9c\x85", "+") // check mark
	}
	fmt.Fprintf(out, "%s Overlay '%s' %s (%s).\n", icon, name, state, target)
	return nil
}

func catalogShow(cmd *cobra.Command, args []string) error {
	info, err := findOverlay(cmd, args[0])
	if err != nil {
		return err
	}

	data, err := os.ReadFile(info.Path)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

// findOverlay looks an overlay up among the files catalog list shows, by
// file name without extension or "_" prefix, or by the name it declares.
func findOverlay(cmd *cobra.Command, name string) (registry.OverlayInfo, error) {
	dir, err := overlayDir(cmd)
	if err != nil {
		return registry.OverlayInfo{}, err
	}

	_, infos, err := registry.LoadOverlays(dir, nil)
	if err != nil {
		return registry.OverlayInfo{}, fmt.Errorf("failed to load overlays: %w", err)
	}
	for _, info := range infos {
		if overlayFileKey(info.Path) == name {
			return info, nil
		}
	}
	for _, info := range infos {
		if info.Name == name {
			return info, nil
		}
	}
	return registry.OverlayInfo{}, fmt.Errorf("overlay '%s' not found in %s", name, dir)
}

func overlayFileKey(path string) string {
	file := filepath.Base(path)
	return strings.TrimPrefix(strings.TrimSuffix(file, filepath.Ext(file)), "_")
}
