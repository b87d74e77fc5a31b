package main

import "github.com/oss-values/issue-stats/cmd"

func main() {
	cmd.Execute()
}
