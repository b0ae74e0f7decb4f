package cmd

import (
	"fmt"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/corentings/chess/v2"

	"github.com/ashvale/ember/src/sys"
)

type chessMatch struct {
	game    *chess.Game
	whiteID string
	blackID string
}

var (
	chessMu      sync.Mutex
	chessMatches = map[string]*chessMatch{} // keyed by channel ID
)

func init() {
	sys.RegisterCommand(&discordgo.ApplicationCommand{
		Name:        "chess",
		Description: "Play chess against another member",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "challenge",
				Description: "Start a match in this channel",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionUser,
						Name:        "opponent",
						Description: "Who plays black",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "move",
				Description: "Make a move",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:         discordgo.ApplicationCommandOptionString,
						Name:         "move",
						Description:  "Move in algebraic notation (e.g. e4, Nf3)",
						Required:     true,
						Autocomplete: true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "board",
				Description: "Show the current position",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "resign",
				Description: "Resign the current match",
			},
		},
	}, func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		options := i.ApplicationCommandData().Options
		if len(options) == 0 {
			return
		}
		switch options[0].Name {
		case "challenge":
			handleChessChallenge(s, i, options[0].Options)
		case "move":
			handleChessMove(s, i, options[0].Options)
		case "board":
			handleChessBoard(s, i)
		case "resign":
			handleChessResign(s, i)
		}
	})

	sys.RegisterAutocompleteHandler("chess", handleChessAutocomplete)
}

func handleChessChallenge(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	user := sys.InteractionUser(i)
	opponent := optionMap(options)["opponent"].UserValue(s)

	if opponent.ID == user.ID {
		respondError(s, i, "You can't challenge yourself.")
		return
	}
	if opponent.Bot {
		respondError(s, i, "Bots decline all challenges.")
		return
	}

	chessMu.Lock()
	if _, running := chessMatches[i.ChannelID]; running {
		chessMu.Unlock()
		respondError(s, i, "A match is already running in this channel.")
		return
	}
	match := &chessMatch{game: chess.NewGame(), whiteID: user.ID, blackID: opponent.ID}
	chessMatches[i.ChannelID] = match
	chessMu.Unlock()

	embed := sys.NewEmbed("Chess")
	embed.Description = fmt.Sprintf("<@%s> (white) vs <@%s> (black)\n\n%s\nWhite to move. Use `/chess move`.",
		user.ID, opponent.ID, renderChessBoard(match.game))
	sys.RespondEmbed(s, i, embed)
}

func handleChessMove(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	chessMu.Lock()
	match, ok := chessMatches[i.ChannelID]
	chessMu.Unlock()
	if !ok {
		respondError(s, i, "No match in this channel. Start one with /chess challenge.")
		return
	}

	user := sys.InteractionUser(i)
	notation := strings.TrimSpace(optionMap(options)["move"].StringValue())

	chessMu.Lock()
	toMove, opponentID := match.whiteID, match.blackID
	if match.game.Position().Turn() == chess.Black {
		toMove, opponentID = match.blackID, match.whiteID
	}
	if user.ID != toMove {
		chessMu.Unlock()
		respondError(s, i, "It's not your turn.")
		return
	}
	err := match.game.PushNotationMove(notation, chess.AlgebraicNotation{}, nil)
	outcome := match.game.Outcome()
	board := renderChessBoard(match.game)
	chessMu.Unlock()

	if err != nil {
		respondError(s, i, fmt.Sprintf("`%s` is not a legal move.", notation))
		return
	}

	embed := sys.NewEmbed("Chess")
	if outcome != chess.NoOutcome {
		winnerID := ""
		switch outcome {
		case chess.WhiteWon:
			winnerID = match.whiteID
		case chess.BlackWon:
			winnerID = match.blackID
		}
		if winnerID != "" {
			embed.Description = fmt.Sprintf("%s\n\n**Checkmate!** <@%s> wins.", board, winnerID)
		} else {
			embed.Description = fmt.Sprintf("%s\n\n**Draw.**", board)
		}
		finishChessMatch(i.ChannelID, i.GuildID, match, winnerID)
	} else {
		embed.Description = fmt.Sprintf("%s\n<@%s> played `%s`. <@%s> to move.", board, user.ID, notation, opponentID)
	}
	sys.RespondEmbed(s, i, embed)
}

func handleChessBoard(s *discordgo.Session, i *discordgo.InteractionCreate) {
	chessMu.Lock()
	match, ok := chessMatches[i.ChannelID]
	var board, toMove string
	if ok {
		board = renderChessBoard(match.game)
		toMove = match.whiteID
		if match.game.Position().Turn() == chess.Black {
			toMove = match.blackID
		}
	}
	chessMu.Unlock()
	if !ok {
		respondError(s, i, "No match in this channel. Start one with /chess challenge.")
		return
	}

	embed := sys.NewEmbed("Chess")
	embed.Description = fmt.Sprintf("%s\n<@%s> to move.", board, toMove)
	sys.RespondEmbed(s, i, embed)
}

func handleChessResign(s *discordgo.Session, i *discordgo.InteractionCreate) {
	chessMu.Lock()
	match, ok := chessMatches[i.ChannelID]
	chessMu.Unlock()
	if !ok {
		respondError(s, i, "No match in this channel.")
		return
	}

	user := sys.InteractionUser(i)
	var winnerID string
	switch user.ID {
	case match.whiteID:
		winnerID = match.blackID
	case match.blackID:
		winnerID = match.whiteID
	default:
		respondError(s, i, "You're not playing in this match.")
		return
	}

	finishChessMatch(i.ChannelID, i.GuildID, match, winnerID)
	sys.Respond(s, i, fmt.Sprintf("<@%s> resigns. <@%s> wins!", user.ID, winnerID))
}

func finishChessMatch(channelID, guildID string, match *chessMatch, winnerID string) {
	chessMu.Lock()
	delete(chessMatches, channelID)
	chessMu.Unlock()

	ctx, cancel := cmdContext()
	defer cancel()
	for _, playerID := range []string{match.whiteID, match.blackID} {
		if err := sys.RecordGamePlay(ctx, guildID, playerID, "chess", playerID == winnerID, 0); err != nil {
			sys.LogError("failed to record chess result: %v", err)
		}
	}
}

var chessPieceIcons = map[chess.Piece]string{
	chess.WhiteKing: "♔", chess.WhiteQueen: "♕", chess.WhiteRook: "♖",
	chess.WhiteBishop: "♗", chess.WhiteKnight: "♘", chess.WhitePawn: "♙",
	chess.BlackKing: "♚", chess.BlackQueen: "♛", chess.BlackRook: "♜",
	chess.BlackBishop: "♝", chess.BlackKnight: "♞", chess.BlackPawn: "♟",
}

// renderChessBoard draws the position as a monospace grid, rank 8 at the top.
func renderChessBoard(g *chess.Game) string {
	board := g.Position().Board()
	var sb strings.Builder
	sb.WriteString("```\n")
	for r := 7; r >= 0; r-- {
		fmt.Fprintf(&sb, "%d ", r+1)
		for c := 0; c < 8; c++ {
			p := board.Piece(chess.Square(r*8 + c))
			icon, ok := chessPieceIcons[p]
			if !ok {
				icon = "·"
			}
			sb.WriteString(icon + " ")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("  a b c d e f g h\n```")
	return sb.String()
}

func handleChessAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	chessMu.Lock()
	match, ok := chessMatches[i.ChannelID]
	var moves []chess.Move
	var pos *chess.Position
	if ok {
		moves = match.game.ValidMoves()
		pos = match.game.Position()
	}
	chessMu.Unlock()
	if !ok {
		return
	}

	var partial string
	for _, opt := range i.ApplicationCommandData().Options {
		for _, sub := range opt.Options {
			if sub.Name == "move" && sub.Focused {
				partial = sub.StringValue()
			}
		}
	}

	var choices []*discordgo.ApplicationCommandOptionChoice
	for idx := range moves {
		san := chess.AlgebraicNotation{}.Encode(pos, &moves[idx])
		if partial != "" && !strings.HasPrefix(strings.ToLower(san), strings.ToLower(partial)) {
			continue
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: san, Value: san})
		if len(choices) == 25 {
			break
		}
	}

	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	})
}
