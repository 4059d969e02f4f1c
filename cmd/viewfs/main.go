// Command viewfs inspects and manipulates a composed namespace from the
// command line without mounting it.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	flag "github.com/spf13/pflag"

	"github.com/example/viewfs/pkg/fs"
	"github.com/example/viewfs/pkg/viewfs"

	_ "github.com/example/viewfs/pkg/fs/local"
	_ "github.com/example/viewfs/pkg/fs/memory"
)

const usage = `Usage: viewfs -config <file> <command> [args]

Commands:
  ls <path>             List a directory
  stat <path>           Print attributes of a path
  resolve <path>        Show how a path routes to a backing store
  cat <path>            Print file content
  mkdir <path>          Create a directory
  rm [-r] <path>        Remove a file or directory
  write <path>          Append stdin to a file, creating it if needed
`

func main() {
	configPath := flag.String("config", "", "Path to the mount table config (YAML)")
	recursive := flag.BoolP("recursive", "r", false, "Remove directories recursively")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	level := slog.LevelWarn
	if *debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	args := flag.Args()
	if *configPath == "" || len(args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
	command, path := args[0], args[1]

	cfg, err := viewfs.LoadFile(*configPath)
	if err != nil {
		fatalf("failed to load config: %v", err)
	}
	ns, err := viewfs.New(cfg)
	if err != nil {
		fatalf("failed to build namespace: %v", err)
	}
	defer ns.Close()

	ctx := context.Background()
	switch command {
	case "ls":
		err = runLs(ctx, ns, path)
	case "stat":
		err = runStat(ctx, ns, path)
	case "resolve":
		err = runResolve(ns, path)
	case "cat":
		err = runCat(ctx, ns, path)
	case "mkdir":
		err = ns.Mkdir(ctx, path, 0755)
	case "rm":
		err = ns.Delete(ctx, path, *recursive)
	case "write":
		err = runWrite(ctx, ns, path)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
	if err != nil {
		fatalf("%s: %v", command, err)
	}
}

func runLs(ctx context.Context, ns *viewfs.Namespace, path string) error {
	entries, err := ns.List(ctx, path)
	if err != nil {
		return err
	}
	for _, e := range entries {
		name := e.Name
		if e.Info.Type == fs.FileTypeSymlink {
			name = fmt.Sprintf("%s -> %s", e.Name, e.Info.SymlinkTarget)
		}
		fmt.Printf("%s%s %8s  %s  %s\n",
			typeChar(e.Info.Type), e.Info.Mode,
			humanize.Bytes(uint64(e.Info.Size)),
			e.Info.ModTime.Format("2006-01-02 15:04"),
			name)
	}
	return nil
}

func runStat(ctx context.Context, ns *viewfs.Namespace, path string) error {
	info, err := ns.GetAttr(ctx, path)
	if err != nil {
		return err
	}
	fmt.Printf("Path:    %s\n", path)
	fmt.Printf("Type:    %s\n", info.Type)
	fmt.Printf("Mode:    %s%s\n", typeChar(info.Type), info.Mode)
	fmt.Printf("Size:    %d (%s)\n", info.Size, humanize.Bytes(uint64(info.Size)))
	fmt.Printf("Owner:   %d:%d\n", info.Uid, info.Gid)
	fmt.Printf("ModTime: %s\n", info.ModTime.Format("2006-01-02 15:04:05"))
	if info.SymlinkTarget != "" {
		fmt.Printf("Target:  %s\n", info.SymlinkTarget)
	}
	return nil
}

func runResolve(ns *viewfs.Namespace, path string) error {
	res, err := ns.Resolve(path)
	if err != nil {
		return err
	}
	fmt.Printf("Path:      %s\n", res.Path)
	fmt.Printf("Kind:      %s\n", res.Kind)
	fmt.Printf("MountPath: %s\n", res.MountPath)
	if res.Target != "" {
		fmt.Printf("Target:    %s\n", res.Target)
	}
	return nil
}

func runCat(ctx context.Context, ns *viewfs.Namespace, path string) error {
	offset := int64(0)
	for {
		data, eof, err := ns.Read(ctx, path, offset, 1<<20)
		if err != nil {
			return err
		}
		if _, err := os.Stdout.Write(data); err != nil {
			return err
		}
		offset += int64(len(data))
		if eof || len(data) == 0 {
			return nil
		}
	}
}

func runWrite(ctx context.Context, ns *viewfs.Namespace, path string) error {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return err
	}
	if err := ns.Create(ctx, path, 0644, false); err != nil && !errors.Is(err, fs.ErrExist) {
		return err
	}
	_, err = ns.Append(ctx, path, data)
	return err
}

func typeChar(t fs.FileType) string {
	switch t {
	case fs.FileTypeDirectory:
		return "d"
	case fs.FileTypeSymlink:
		return "l"
	default:
		return "-"
	}
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
