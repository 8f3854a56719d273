package mcp

import (
	"context"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/peterkuimelis/careerpoker/internal/game"
)

// maxWait caps wait_for_turn.
const maxWait = 5 * time.Minute

// RegisterTools adds all game tools to the MCP server.
func RegisterTools(s *server.MCPServer, sess *Session) {
	s.AddTool(joinRoomTool(), sess.handleJoinRoom)
	s.AddTool(dealTool(), sess.handleDeal)
	s.AddTool(serveTool(), sess.handleServe)
	s.AddTool(passTool(), sess.handlePass)
	s.AddTool(selectFromPileTool(), sess.handleSelectFromPile)
	s.AddTool(selectAndPassTool(), sess.handleSelectAndPass)
	s.AddTool(oneChanceTool(), sess.handleOneChance)
	s.AddTool(leaveTool(), sess.handleLeave)
	s.AddTool(getGameStateTool(), sess.handleGetGameState)
	s.AddTool(waitForTurnTool(), sess.handleWaitForTurn)
}

const cardsHelp = "Space-separated cards, e.g. '3s 3d' or 'Th joker'. " +
	"Ranks A,2-9,T,J,Q,K; suits s,d,h,c."

// --- Tool definitions ---

func joinRoomTool() mcp.Tool {
	return mcp.NewTool("join_room",
		mcp.WithDescription("Take a seat at a career poker table. Creates the room if it does not exist. "+
			"Human players join the same room with `careerpoker join --room <room> --player <name>`."),
		mcp.WithString("room", mcp.Required(), mcp.Description("Room id")),
		mcp.WithString("player", mcp.Required(), mcp.Description("Your seat name")),
	)
}

func dealTool() mcp.Tool {
	return mcp.NewTool("deal",
		mcp.WithDescription("Shuffle and deal a new hand to everyone seated. The first seat leads."),
	)
}

func serveTool() mcp.Tool {
	return mcp.NewTool("serve",
		mcp.WithDescription("Play cards of one rank on your turn. They must beat the pile in play under the rules in force."),
		mcp.WithString("cards", mcp.Required(), mcp.Description(cardsHelp)),
	)
}

func passTool() mcp.Tool {
	return mcp.NewTool("pass",
		mcp.WithDescription("Pass your turn."),
	)
}

func selectFromPileTool() mcp.Tool {
	return mcp.NewTool("select_from_pile",
		mcp.WithDescription("Answer a pick-up prompt (after a 4 or K) by taking cards from the discard or excluded pile."),
		mcp.WithString("pool", mcp.Required(), mcp.Enum("discard", "excluded"), mcp.Description("Pile named in your prompt")),
		mcp.WithString("cards", mcp.Required(), mcp.Description(cardsHelp)),
	)
}

func selectAndPassTool() mcp.Tool {
	return mcp.NewTool("select_and_pass",
		mcp.WithDescription("Answer a gift prompt (after a 7) by handing cards from your hand to the previous player."),
		mcp.WithString("cards", mcp.Required(), mcp.Description(cardsHelp)),
	)
}

func oneChanceTool() mcp.Tool {
	return mcp.NewTool("one_chance",
		mcp.WithDescription("Out of turn, match the pile in play with the same rank and size. "+
			"Success takes the lead; a miss changes nothing."),
		mcp.WithString("cards", mcp.Required(), mcp.Description(cardsHelp)),
	)
}

func leaveTool() mcp.Tool {
	return mcp.NewTool("leave",
		mcp.WithDescription("Give up your seat."),
	)
}

func getGameStateTool() mcp.Tool {
	return mcp.NewTool("get_game_state",
		mcp.WithDescription("Get the table from your seat and the events since your last call. Read-only."),
	)
}

func waitForTurnTool() mcp.Tool {
	return mcp.NewTool("wait_for_turn",
		mcp.WithDescription("Block until it is your turn, you owe a prompt, or the table is about to clear."),
		mcp.WithNumber("timeout_ms", mcp.Description("Give up after this many milliseconds (default 60000)")),
	)
}

// --- Tool handlers ---

func (s *Session) result(resp *ToolResponse, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res := mcp.NewToolResultText(respondJSON(resp))
	res.IsError = resp.Error != nil
	return res, nil
}

func (s *Session) submit(ctx context.Context, a game.Action) (*mcp.CallToolResult, error) {
	return s.result(s.Submit(ctx, a))
}

func requireCards(request mcp.CallToolRequest) ([]game.Card, error) {
	raw, err := request.RequireString("cards")
	if err != nil {
		return nil, err
	}
	return game.ParseCards(strings.Fields(raw))
}

func (s *Session) handleJoinRoom(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	roomID := strings.TrimSpace(request.GetString("room", ""))
	player := strings.TrimSpace(request.GetString("player", ""))
	if roomID == "" || player == "" {
		return mcp.NewToolResultError("room and player are required"), nil
	}
	return s.result(s.Join(ctx, roomID, player))
}

func (s *Session) handleDeal(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.submit(ctx, game.Deal())
}

func (s *Session) handleServe(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cards, err := requireCards(request)
	if err != nil {
		return mcp.NewToolResultErrorf("Invalid cards: %v", err), nil
	}
	return s.submit(ctx, game.Serve(s.Player(), cards...))
}

func (s *Session) handlePass(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.submit(ctx, game.Pass(s.Player()))
}

func (s *Session) handleSelectFromPile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pool, err := game.ParsePool(request.GetString("pool", ""))
	if err != nil {
		return mcp.NewToolResultErrorf("Invalid pool: %v", err), nil
	}
	cards, err := requireCards(request)
	if err != nil {
		return mcp.NewToolResultErrorf("Invalid cards: %v", err), nil
	}
	return s.submit(ctx, game.SelectFromPile(s.Player(), pool, cards...))
}

func (s *Session) handleSelectAndPass(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cards, err := requireCards(request)
	if err != nil {
		return mcp.NewToolResultErrorf("Invalid cards: %v", err), nil
	}
	return s.submit(ctx, game.SelectAndPass(s.Player(), cards...))
}

func (s *Session) handleOneChance(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cards, err := requireCards(request)
	if err != nil {
		return mcp.NewToolResultErrorf("Invalid cards: %v", err), nil
	}
	return s.submit(ctx, game.OneChance(s.Player(), cards...))
}

func (s *Session) handleLeave(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.submit(ctx, game.Leave(s.Player()))
}

func (s *Session) handleGetGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.result(s.State(ctx))
}

func (s *Session) handleWaitForTurn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	timeout := time.Duration(request.GetInt("timeout_ms", 60000)) * time.Millisecond
	if timeout <= 0 || timeout > maxWait {
		timeout = maxWait
	}
	return s.result(s.WaitForTurn(ctx, timeout))
}
