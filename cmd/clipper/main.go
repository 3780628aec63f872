// Command clipper 是视频剪辑服务的命令行客户端
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/umputun/go-flags"

	apperrors "github.com/clipper-video/clipper/pkg/errors"
)

type options struct {
	Config  string `short:"c" long:"config" env:"CLIPPER_CONFIG" description:"config file (default: ./clipper.yaml)"`
	EnvFile string `long:"env-file" default:".env" description:"dotenv file with CLIPPER_* variables"`
	BaseURL string `long:"api" description:"backend api url, overrides api.base_url"`
	Output  string `short:"o" long:"output" choice:"text" choice:"json" choice:"yaml" default:"text" description:"output format"`
	Dbg     bool   `long:"dbg" description:"debug logging"`

	Submit  submitCmd  `command:"submit" description:"create a clipping job from a youtube url"`
	Upload  uploadCmd  `command:"upload" description:"upload a local video and create a clipping job"`
	Status  statusCmd  `command:"status" description:"show a job, the remembered one by default"`
	Resume  resumeCmd  `command:"resume" description:"refresh the remembered job if it is still fresh"`
	Wait    waitCmd    `command:"wait" description:"poll a job until it finishes"`
	Cancel  cancelCmd  `command:"cancel" description:"cancel the remembered job"`
	Clear   clearCmd   `command:"clear" description:"forget the remembered job"`
	Zip     zipCmd     `command:"zip" description:"download the clips of a finished job as zip"`
	Words   wordsCmd   `command:"words" description:"print word level subtitles of a job"`
	Version versionCmd `command:"version" description:"print version"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		var fe *flags.Error
		if errors.As(err, &fe) {
			if fe.Type == flags.ErrHelp {
				fmt.Fprintln(os.Stdout, fe.Message)
				os.Exit(0)
			}
			fmt.Fprintln(os.Stderr, fe.Message)
			os.Exit(2)
		}
		if code := apperrors.Code(err); code != 0 {
			fmt.Fprintf(os.Stderr, "error %d: %v\n", code, err)
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

// run 解析参数并执行子命令，stdout 只输出命令结果，日志写到 stderr
func run(ctx context.Context, args []string, stdout io.Writer) error {
	var opts options
	opts.Version.w = stdout
	p := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	p.CommandHandler = func(cmd flags.Commander, args []string) error {
		if cmd == nil {
			return nil
		}
		b, ok := cmd.(binder)
		if !ok {
			return cmd.Execute(args)
		}

		rt, err := newApp(ctx, &opts, stdout)
		if err != nil {
			return err
		}
		defer rt.close()

		b.bind(rt)
		return cmd.Execute(args)
	}

	_, err := p.ParseArgs(args)
	return err
}
