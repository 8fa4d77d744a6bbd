package main

import (
	"github.com/spf13/cobra"
)

func main() {
	var root = &cobra.Command{Use: "agrihub"}

	root.AddCommand(serveCMD(), migrateCMD(), rebuildCMD(), queryCMD(), tokenCMD())
	_ = root.Execute()
}
