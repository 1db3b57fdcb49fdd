package repl

import (
	"os"
	"sort"
	"strings"

	"github.com/chzyer/readline"
	"github.com/steveyegge/toolkit/internal/format"
)

// completer builds tab completion for commands, formats and file names
func (r *REPL) completer() *readline.PrefixCompleter {
	formats := func() []readline.PrefixCompleterInterface {
		items := make([]readline.PrefixCompleterInterface, 0, len(format.All()))
		for _, f := range format.All() {
			items = append(items, readline.PcItem(string(f), readline.PcItemDynamic(listFiles)))
		}
		return items
	}

	return readline.NewPrefixCompleter(
		readline.PcItem("load", readline.PcItemDynamic(listFiles)),
		readline.PcItem("paste"),
		readline.PcItem("show", readline.PcItem("output")),
		readline.PcItem("clear"),
		readline.PcItem("detect"),
		readline.PcItem("from", append(formats(), readline.PcItem("auto"))...),
		readline.PcItem("convert", formats()...),
		readline.PcItem("validate"),
		readline.PcItem("fmt", readline.PcItem("minify")),
		readline.PcItem("select"),
		readline.PcItem("set",
			readline.PcItem("indent"),
			readline.PcItem("delimiter", readline.PcItem("comma"), readline.PcItem("tab"),
				readline.PcItem("semicolon"), readline.PcItem("pipe"), readline.PcItem("auto")),
			readline.PcItem("root"),
			readline.PcItem("sort", readline.PcItem("on"), readline.PcItem("off")),
			readline.PcItem("minify", readline.PcItem("on"), readline.PcItem("off")),
		),
		readline.PcItem("use"),
		readline.PcItem("write", readline.PcItemDynamic(listFiles)),
		readline.PcItem("history"),
		readline.PcItem("help"),
		readline.PcItem("exit"),
		readline.PcItem("quit"),
	)
}

// listFiles offers data files in the working directory
func listFiles(line string) []string {
	entries, err := os.ReadDir(".")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if format.FormatFromExtension(e.Name()) != format.FormatUnknown {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}
