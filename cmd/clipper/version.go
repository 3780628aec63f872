package main

import (
	"fmt"
	"io"
	"runtime"
)

// Version 客户端版本号
const Version = "0.3.0"

// revision 构建时通过 -ldflags "-X main.revision=..." 注入
var revision = "unknown"

const banner = `
 ██████╗██╗     ██╗██████╗ ██████╗ ███████╗██████╗
██╔════╝██║     ██║██╔══██╗██╔══██╗██╔════╝██╔══██╗
██║     ██║     ██║██████╔╝██████╔╝█████╗  ██████╔╝
╚██████╗███████╗██║██║     ██║     ███████╗██║  ██║
 ╚═════╝╚══════╝╚═╝╚═╝     ╚═╝     ╚══════╝╚═╝  ╚═╝  %s (%s)
`

type versionCmd struct {
	Short bool `short:"s" long:"short" description:"print version only"`

	w io.Writer
}

func (c *versionCmd) Execute([]string) error {
	if c.Short {
		_, err := fmt.Fprintln(c.w, Version)
		return err
	}
	if _, err := fmt.Fprintf(c.w, banner, Version, revision); err != nil {
		return err
	}
	_, err := fmt.Fprintf(c.w, "go %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	return err
}
