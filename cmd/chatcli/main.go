package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"chatcli/internal/config"
	"chatcli/internal/diffview"
	"chatcli/internal/orchestrator"
	"chatcli/internal/permission"
	"chatcli/internal/provider"
	"chatcli/internal/repl"
	"chatcli/internal/security"
	"chatcli/internal/session"
	"chatcli/internal/tools"
)

const defaultSystemPrompt = "You are a coding assistant running inside the user's terminal. " +
	"You can read, write and patch files, search the workspace, run shell commands and keep a todo list through tool calls. " +
	"Use tools to inspect real state instead of guessing, keep answers short, and stop once the task is done."

func main() {
	var (
		configPath string
		workspace  string
		model      string
		sessionArg string
		systemMsg  string
		temp       float64
		maxTokens  int
		noStream   bool
		prompt     string
	)
	flag.StringVar(&configPath, "config", "", "Path to config JSON")
	flag.StringVar(&workspace, "cwd", "", "Workspace root override")
	flag.StringVar(&model, "model", "", "Model id override")
	flag.StringVar(&sessionArg, "session", "", "Session file to load and save")
	flag.StringVar(&systemMsg, "system", "", "System prompt override")
	flag.Float64Var(&temp, "temp", -1, "Sampling temperature (unset when negative)")
	flag.IntVar(&maxTokens, "maxtokens", 0, "Max completion tokens (0 = provider default)")
	flag.BoolVar(&noStream, "no-stream", false, "Disable incremental answer streaming")
	flag.StringVar(&prompt, "p", "", "One-shot prompt: send, print the answer and exit")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	if strings.TrimSpace(model) != "" {
		cfg.Provider.Model = model
	}

	root := strings.TrimSpace(workspace)
	if root == "" {
		root = strings.TrimSpace(cfg.Runtime.WorkspaceRoot)
	}
	if root == "" {
		root, err = os.Getwd()
		if err != nil {
			fmt.Fprintf(os.Stderr, "resolve cwd failed: %v\n", err)
			os.Exit(1)
		}
	}
	ws, err := security.NewWorkspace(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init workspace failed: %v\n", err)
		os.Exit(1)
	}

	sessionPath := strings.TrimSpace(sessionArg)
	if sessionPath == "" {
		sessionPath = strings.TrimSpace(cfg.Runtime.SessionFile)
	}
	store, err := session.Open(sessionPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	gate := permission.NewGate()
	preview := diffview.NewPreviewer(store.DiffPreview())
	registry := tools.NewRegistry(
		tools.NewRunCommandTool(gate, ws.Root(), cfg.Safety.CommandTimeoutMS, cfg.Safety.OutputLimitBytes),
		tools.NewSearchFilesTool(ws),
		tools.NewPathExistsTool(ws),
		tools.NewReadDirTool(ws),
		tools.NewReadFileTool(ws, gate),
		tools.NewWriteFileTool(ws, gate, preview),
		tools.NewPatchFileTool(ws, gate, preview),
		tools.NewManageTodoTool(store),
	)

	providerClient := provider.NewOpenAIProvider(provider.OpenAIConfig{
		BaseURL:   cfg.Provider.BaseURL,
		APIKey:    cfg.Provider.APIKey,
		Model:     cfg.Provider.Model,
		TimeoutMS: cfg.Provider.TimeoutMS,
	})

	systemPrompt := defaultSystemPrompt
	if strings.TrimSpace(cfg.Runtime.SystemPrompt) != "" {
		systemPrompt = cfg.Runtime.SystemPrompt
	}
	if strings.TrimSpace(systemMsg) != "" {
		systemPrompt = systemMsg
	}

	var temperature *float64
	if temp >= 0 {
		temperature = &temp
	}

	orch := orchestrator.New(providerClient, registry, orchestrator.Options{
		Store:        store,
		Gate:         gate,
		SystemPrompt: systemPrompt,
		MaxRounds:    cfg.Runtime.MaxRounds,
		Temperature:  temperature,
		MaxTokens:    maxTokens,
		Stream:       !noStream,
	})
	defer orch.Close()

	if strings.TrimSpace(prompt) != "" {
		if err := orch.RunOneShot(context.Background(), prompt, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := repl.NewLoop(orch, ws.Root(), cfg.Runtime.HistoryFile).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
