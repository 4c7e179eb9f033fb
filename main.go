package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/ByLCY/outliner/config"
	"github.com/ByLCY/outliner/editor"
	"github.com/ByLCY/outliner/element"
	"github.com/ByLCY/outliner/logger"
	"github.com/ByLCY/outliner/outline"
	"github.com/ByLCY/outliner/render"
	canvasrenderer "github.com/ByLCY/outliner/render/canvas"
	"github.com/ByLCY/outliner/text"
)

// runOptions 汇总命令行参数。
type runOptions struct {
	Input  string
	Output string
	Page   string
	Width  float64
	Debug  string
	Keys   string
	Save   string
	Dump   bool
}

func main() {
	input := flag.String("in", "examples/demo.outline", "大纲文件路径")
	output := flag.String("out", "output/demo.pdf", "PDF 输出路径，为空时不渲染")
	page := flag.String("page", "", "打开的页面标题，默认第一页")
	width := flag.String("width", "", "布局宽度，支持 pt/mm/in 等单位，默认取配置")
	debug := flag.String("debug", "", "部件树调试 JSON 输出路径")
	keys := flag.String("keys", "", "按键脚本路径，在渲染前回放")
	save := flag.String("save", "", "把编辑后的文档写回大纲文件")
	envFile := flag.String("env", "", ".env 配置文件路径")
	dump := flag.Bool("dump", false, "在终端打印部件树")
	flag.Parse()

	var envFiles []string
	if *envFile != "" {
		envFiles = append(envFiles, *envFile)
	}
	cfg, err := config.Load(envFiles...)
	if err != nil {
		log.Fatalf("读取配置失败: %v", err)
	}
	if *width != "" {
		l, err := text.ParseLength(*width)
		if err != nil {
			log.Fatalf("解析宽度失败: %v", err)
		}
		cfg.Width = l.ToPT()
	}
	zl, err := logger.New(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile, Production: cfg.Production})
	if err != nil {
		log.Fatalf("创建日志失败: %v", err)
	}
	defer zl.Sync()

	opts := runOptions{
		Input:  *input,
		Output: *output,
		Page:   *page,
		Width:  cfg.Width,
		Debug:  *debug,
		Keys:   *keys,
		Save:   *save,
		Dump:   *dump,
	}
	r := canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{
		BaseDir:    filepath.Dir(*input),
		MonoFamily: cfg.MonoFamily,
		Margin:     cfg.Margin,
		Logger:     zl.Named("render"),
	})
	if err := run(opts, cfg, r, zl, os.Stdout); err != nil {
		zl.Error("处理大纲失败", zap.Error(err))
		log.Fatalf("处理大纲失败: %v", err)
	}
	if *output != "" {
		fmt.Printf("已生成 PDF：%s\n", *output)
	}
}

// run 串联解析、编辑器构建、按键回放与渲染。
func run(opts runOptions, cfg config.Config, r render.Renderer, zl *zap.Logger, stdout io.Writer) error {
	if r == nil {
		return fmt.Errorf("renderer 不能为空")
	}
	ts, ok := r.(text.Typesetter)
	if !ok {
		return fmt.Errorf("renderer 未实现排版接口")
	}
	file, err := os.Open(opts.Input)
	if err != nil {
		return fmt.Errorf("无法打开大纲文件 %s: %w", opts.Input, err)
	}
	defer file.Close()

	doc, parsed, err := outline.Load(file,
		element.WithDebounce(cfg.DebounceDelay),
		element.WithLogger(zl.Named("element")),
	)
	if err != nil {
		return err
	}
	doc.OnPersist = func(*element.Document) { zl.Debug("文档变更已落定") }
	page, def := pickPage(doc, parsed, opts.Page)
	if page == nil {
		return fmt.Errorf("找不到页面 %q", opts.Page)
	}

	rootOpts := []editor.RootOption{
		editor.WithOptions(cfg.EditorOptions()),
		editor.WithLogger(zl.Named("editor")),
	}
	if cfg.Journal || (def != nil && def.Journal()) {
		rootOpts = append(rootOpts, editor.AsJournal())
	}
	root := editor.NewRoot(doc, page, ts, rootOpts...)
	defer root.Close()
	root.OnOpenLink = func(url string) { zl.Info("打开链接", zap.String("url", url)) }
	root.OnOpenInternalLink = func(title string) {
		if target := doc.Find(title); target != nil {
			root.Visit(target)
		}
	}
	root.Layout(opts.Width)

	if opts.Keys != "" {
		if err := replayKeys(root, opts.Keys); err != nil {
			return err
		}
	}
	// 让合并中的结构变更落定，刷新反向链接区块。
	root.Tick(time.Now().Add(cfg.DebounceDelay + time.Millisecond))
	root.Tree().LayoutIfNeeded()

	if opts.Dump {
		dumpTree(stdout, root)
	}
	if opts.Debug != "" {
		if err := os.MkdirAll(filepath.Dir(opts.Debug), 0o755); err != nil {
			return fmt.Errorf("创建调试目录失败: %w", err)
		}
		if err := root.Tree().WriteDebugJSON(opts.Debug); err != nil {
			return fmt.Errorf("输出调试 JSON 失败: %w", err)
		}
	}
	if opts.Save != "" {
		if err := saveOutline(doc, parsed, opts.Save); err != nil {
			return err
		}
	}
	if opts.Output == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.Output), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	pdfBytes, err := r.Render(root.Tree())
	if err != nil {
		return fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	if err := os.WriteFile(opts.Output, pdfBytes, 0o644); err != nil {
		return fmt.Errorf("写入 PDF 文件失败: %w", err)
	}
	return nil
}

func pickPage(doc *element.Document, parsed *outline.File, title string) (*element.Element, *outline.Outline) {
	if title == "" {
		if doc.Root().ChildCount() == 0 {
			return nil, nil
		}
		page := doc.Root().Child(0)
		return page, parsed.Outlines[0]
	}
	return doc.Find(title), parsed.Find(title)
}

func replayKeys(root *editor.Root, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("无法打开按键脚本 %s: %w", path, err)
	}
	defer f.Close()
	script, err := outline.ParseScript(f)
	if err != nil {
		return fmt.Errorf("解析按键脚本失败: %w", err)
	}
	if err := outline.Replay(root, script); err != nil {
		return fmt.Errorf("回放按键脚本失败: %w", err)
	}
	return nil
}

func saveOutline(doc *element.Document, parsed *outline.File, path string) error {
	var journals []string
	for _, o := range parsed.Outlines {
		if o.Journal() {
			journals = append(journals, string(o.Title))
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建大纲文件失败: %w", err)
	}
	if err := outline.Format(f, doc, journals...); err != nil {
		f.Close()
		return fmt.Errorf("写入大纲文件失败: %w", err)
	}
	return f.Close()
}
