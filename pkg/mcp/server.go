// Copyright 2026 © The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

// Package mcp exposes a session's guardian, memory, and layer-guard
// operations as MCP tools over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/vigil-sh/vigil/pkg/guardian"
	"github.com/vigil-sh/vigil/pkg/layers"
	"github.com/vigil-sh/vigil/pkg/memory"
	"github.com/vigil-sh/vigil/pkg/session"
)

// Server wraps the mcp-go server around one agent session.
type Server struct {
	mcpServer *server.MCPServer
	sess      *session.Session
}

// NewServer creates an MCP server bound to the given session and registers
// the Vigil tool set.
func NewServer(name, version string, sess *session.Session) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(name, version),
		sess:      sess,
	}
	s.registerTools()
	return s
}

// ServeStdio starts the server on Stdio.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	s.addTool(
		mcp.NewTool("guardian_trigger",
			mcp.WithDescription("Apply a classified trigger to the session's graduated response state"),
			mcp.WithString("trigger", mcp.Required(),
				mcp.Description("One of: natural_alignment, slight_drift, boundary_approached, clear_violation, imminent_harm, user_invocation, multi_agent_conflict")),
		),
		s.handleTrigger,
	)
	s.addTool(
		mcp.NewTool("guardian_deescalate",
			mcp.WithDescription("Lower the response level with explicit user acknowledgment"),
			mcp.WithString("target", mcp.Required(),
				mcp.Description("Target level: flow, nudge, pause, block, protect")),
			mcp.WithBoolean("acknowledged",
				mcp.Description("Whether the user acknowledged the de-escalation")),
		),
		s.handleDeescalate,
	)
	s.addTool(
		mcp.NewTool("guardian_state",
			mcp.WithDescription("Read the session's current response state"),
		),
		s.handleState,
	)
	s.addTool(
		mcp.NewTool("memory_propose",
			mcp.WithDescription("Propose a candidate long-term memory; it stays pending until the user decides"),
			mcp.WithString("content", mcp.Required(), mcp.Description("The fact to remember")),
			mcp.WithString("source", mcp.Required(),
				mcp.Description("Detection source: user_correction, explicit_teaching, preference_detection, error_resolution, successful_pattern")),
			mcp.WithString("scope", mcp.Required(), mcp.Description("global or project")),
			mcp.WithString("target_layer",
				mcp.Description("Optional configuration stratum the memory writes into")),
		),
		s.handlePropose,
	)
	s.addTool(
		mcp.NewTool("memory_approve",
			mcp.WithDescription("Approve a pending memory; this is the only path into permanent storage"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Pending memory id")),
		),
		s.handleApprove,
	)
	s.addTool(
		mcp.NewTool("memory_reject",
			mcp.WithDescription("Reject a pending memory; identical content is never proposed again"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Pending memory id")),
		),
		s.handleReject,
	)
	s.addTool(
		mcp.NewTool("memory_list",
			mcp.WithDescription("List memories in one partition"),
			mcp.WithString("partition", mcp.Required(),
				mcp.Description("pending, semantic, episodic, or rejected")),
		),
		s.handleList,
	)
	s.addTool(
		mcp.NewTool("layer_check",
			mcp.WithDescription("Check whether an operation against a configuration stratum is permitted"),
			mcp.WithString("layer", mcp.Required(),
				mcp.Description("axioms, purpose, principles, methodology, or technical")),
			mcp.WithString("kind", mcp.Required(),
				mcp.Description("read, modify, delete, or create")),
			mcp.WithString("description", mcp.Description("What the operation would do")),
		),
		s.handleLayerCheck,
	)
}

func (s *Server) addTool(tool mcp.Tool, handler func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error)) {
	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]interface{})
		return handler(ctx, args)
	})
}

func (s *Server) handleTrigger(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	raw := stringArg(args, "trigger")
	trigger, ok := guardian.ParseTrigger(raw)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown trigger %q", raw)), nil
	}
	return jsonResult(s.sess.Trigger(ctx, trigger))
}

func (s *Server) handleDeescalate(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	raw := stringArg(args, "target")
	target, ok := guardian.ParseLevel(raw)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown level %q", raw)), nil
	}
	acknowledged, _ := args["acknowledged"].(bool)
	return jsonResult(s.sess.Deescalate(ctx, target, acknowledged))
}

func (s *Server) handleState(_ context.Context, _ map[string]interface{}) (*mcp.CallToolResult, error) {
	return jsonResult(s.sess.State())
}

func (s *Server) handlePropose(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	content := stringArg(args, "content")
	source := memory.Source(stringArg(args, "source"))
	scope := memory.Scope(stringArg(args, "scope"))

	var opts []memory.ProposeOption
	if raw := stringArg(args, "target_layer"); raw != "" {
		layer, ok := layers.Parse(raw)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("unknown layer %q", raw)), nil
		}
		opts = append(opts, memory.TargetLayer(layer))
	}

	m, err := s.sess.ProposeMemory(ctx, content, source, scope, opts...)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(m)
}

func (s *Server) handleApprove(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	m, err := s.sess.ApproveMemory(ctx, stringArg(args, "id"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(m)
}

func (s *Server) handleReject(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	m, err := s.sess.RejectMemory(ctx, stringArg(args, "id"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(m)
}

func (s *Server) handleList(_ context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	store := s.sess.Memory()
	partition := stringArg(args, "partition")
	var memories []memory.Memory
	switch memory.Type(partition) {
	case memory.Pending:
		memories = store.Pending()
	case memory.Semantic:
		memories = store.Semantic()
	case memory.Episodic:
		memories = store.Episodic()
	case memory.Rejected:
		memories = store.Rejected()
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown partition %q", partition)), nil
	}
	return jsonResult(memories)
}

func (s *Server) handleLayerCheck(_ context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	layer, ok := layers.Parse(stringArg(args, "layer"))
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown layer %q", stringArg(args, "layer"))), nil
	}
	kind := layers.OpKind(stringArg(args, "kind"))
	if !kind.IsValid() {
		return mcp.NewToolResultError(fmt.Sprintf("unknown operation kind %q", stringArg(args, "kind"))), nil
	}
	res := layers.Check(layers.Operation{
		Layer:       layer,
		Kind:        kind,
		Description: stringArg(args, "description"),
	})
	return jsonResult(res)
}

func stringArg(args map[string]interface{}, key string) string {
	v, _ := args[key].(string)
	return v
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}
