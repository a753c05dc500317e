package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/kiryu-dev/dino-digger/internal/domain"
	"github.com/kiryu-dev/dino-digger/internal/engine"
	"github.com/kiryu-dev/dino-digger/pkg/utils"
	"github.com/pkg/errors"
)

const (
	cellEmpty = '.'
	cellBone  = '#'
	cellHit   = 'X'
	cellMiss  = 'o'
)

var errSwitchServer = errors.New("switch server")

func main() {
	addr := flag.String("addr", "localhost:8080", "game server address")
	key := flag.String("key", uuid.NewString(), "client key used to resume a game")
	flag.Parse()
	c := newClient(*key)
	host := *addr
	for {
		err := c.play(host)
		if err == nil {
			return
		}
		if !errors.Is(err, errSwitchServer) {
			log.Fatal(err)
		}
		host = switchHost(host, c.masterServer)
		fmt.Println("reconnecting to " + host)
	}
}

type client struct {
	conn         *websocket.Conn
	key          string
	scanner      *bufio.Scanner
	gridSize     int
	fleet        engine.Fleet
	remaining    []engine.Piece
	own          map[engine.Coordinate]rune
	target       map[engine.Coordinate]rune
	battle       bool
	masterServer string
}

func newClient(key string) *client {
	return &client{
		key:      key,
		scanner:  bufio.NewScanner(os.Stdin),
		gridSize: engine.DefaultGridSize,
		own:      make(map[engine.Coordinate]rune),
		target:   make(map[engine.Coordinate]rune),
	}
}

func (c *client) play(host string) error {
	u := url.URL{Scheme: "ws", Host: host, Path: "/game"}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), http.Header{domain.ClientUuidHeader: {c.key}})
	if err != nil {
		return errors.WithMessage(err, "dial")
	}
	defer func() {
		_ = conn.Close()
	}()
	c.conn = conn
	for {
		msg, err := c.readMessage()
		if err != nil {
			return errors.WithMessage(err, "read message")
		}
		prompt, finished, err := c.handleMessage(msg)
		if err != nil {
			return err
		}
		if finished {
			return nil
		}
		if prompt {
			if err := c.handleCommand(); err != nil {
				return errors.WithMessage(err, "handle command")
			}
		}
	}
}

func (c *client) handleMessage(msg domain.Message) (prompt bool, finished bool, err error) {
	switch msg.Type {
	case domain.StartSetup:
		v, err := utils.UnmarshalJson[domain.StartSetupPayload](msg.Payload)
		if err != nil {
			return false, false, errors.WithMessage(err, "unmarshal json to 'StartSetupPayload' type")
		}
		c.gridSize = v.Rules.GridSize
		c.applySetup(v.Setup)
		return true, false, nil
	case domain.SetupUpdate:
		v, err := utils.UnmarshalJson[domain.SetupUpdatePayload](msg.Payload)
		if err != nil {
			return false, false, errors.WithMessage(err, "unmarshal json to 'SetupUpdatePayload' type")
		}
		c.applySetup(v)
		return true, false, nil
	case domain.BattleStarted:
		v, err := utils.UnmarshalJson[domain.BattleStartedPayload](msg.Payload)
		if err != nil {
			return false, false, errors.WithMessage(err, "unmarshal json to 'BattleStartedPayload' type")
		}
		c.battle = true
		c.fleet = v.Fleet
		c.remaining = nil
		for _, piece := range v.Fleet {
			for _, segment := range piece.Segments {
				if segment.Hit {
					c.own[segment.Cell] = cellHit
				}
			}
		}
		c.printBoards()
		return v.Turn == engine.Human, false, nil
	case domain.DigResult, domain.OpponentDig:
		v, err := utils.UnmarshalJson[domain.DigResultPayload](msg.Payload)
		if err != nil {
			return false, false, errors.WithMessage(err, "unmarshal json to 'DigResultPayload' type")
		}
		c.applyOutcome(v.Outcome)
		c.printBoards()
		printOutcome(v.Outcome)
		return msg.Type == domain.OpponentDig && !v.Outcome.GameOver, false, nil
	case domain.GameOver:
		v, err := utils.UnmarshalJson[domain.GameOverPayload](msg.Payload)
		if err != nil {
			return false, false, errors.WithMessage(err, "unmarshal json to 'GameOverPayload' type")
		}
		for _, piece := range v.OpponentFleet {
			for _, cell := range piece.Cells() {
				if _, ok := c.target[cell]; !ok {
					c.target[cell] = cellBone
				}
			}
		}
		c.printBoards()
		if v.Winner == engine.Human {
			fmt.Println("You dug up every bone. You win!")
		} else {
			fmt.Println("The rival team found all your bones. You lose.")
		}
		return false, true, nil
	case domain.Error:
		v, err := utils.UnmarshalJson[domain.ErrorPayload](msg.Payload)
		if err != nil {
			return false, false, errors.WithMessage(err, "unmarshal json to 'ErrorPayload' type")
		}
		fmt.Println("rejected: " + string(v.Kind))
		return true, false, nil
	case domain.SwitchServer:
		v, err := utils.UnmarshalJson[domain.SwitchServerPayload](msg.Payload)
		if err != nil {
			return false, false, errors.WithMessage(err, "unmarshal json to 'SwitchServerPayload' type")
		}
		c.masterServer = v.MasterServer
		return false, false, errSwitchServer
	default:
		return false, false, errors.Errorf("unexpected message type %d", msg.Type)
	}
}

func (c *client) applySetup(v domain.SetupUpdatePayload) {
	c.fleet = v.Placed
	c.remaining = v.Remaining
	c.printBoards()
	if v.Ready {
		fmt.Println("All bones are buried. Type 'start' to begin digging.")
	}
}

func (c *client) applyOutcome(outcome engine.ShotOutcome) {
	grid := c.target
	if outcome.Side == engine.Opponent {
		grid = c.own
	}
	if outcome.Hit {
		grid[outcome.Cell] = cellHit
	} else {
		grid[outcome.Cell] = cellMiss
	}
}

func printOutcome(outcome engine.ShotOutcome) {
	who := "You"
	if outcome.Side == engine.Opponent {
		who = "The rival team"
	}
	result := "found nothing"
	if outcome.Hit {
		result = "hit a bone"
	}
	fmt.Printf("%s dug at %s and %s.\n", who, outcome.Cell, result)
	if outcome.Destroyed != nil {
		fmt.Printf("The %s skeleton is fully excavated!\n", outcome.Destroyed.Name)
	}
}

func (c *client) handleCommand() error {
	for {
		if c.battle {
			fmt.Print("dig <row> <col>: ")
		} else {
			fmt.Print("place <name> <row> <col> <h|v> | random | reset | start: ")
		}
		if ok := c.scanner.Scan(); !ok {
			if err := c.scanner.Err(); err != nil {
				return err
			}
			return errors.New("stdin closed")
		}
		msg, err := c.parseCommand(strings.Fields(c.scanner.Text()))
		if err != nil {
			fmt.Println(err.Error())
			continue
		}
		return c.writeMessage(msg)
	}
}

func (c *client) parseCommand(fields []string) (domain.Message, error) {
	if len(fields) == 0 {
		return domain.Message{}, errors.New("empty command")
	}
	switch {
	case fields[0] == "dig" && c.battle:
		cell, err := parseCell(fields[1:])
		if err != nil {
			return domain.Message{}, err
		}
		return domain.Message{Type: domain.Dig, Payload: domain.DigPayload{Cell: cell}}, nil
	case fields[0] == "place" && !c.battle:
		if len(fields) < 4 {
			return domain.Message{}, errors.New("usage: place <name> <row> <col> <h|v>")
		}
		cell, err := parseCell(fields[2:4])
		if err != nil {
			return domain.Message{}, err
		}
		orientation := engine.Horizontal
		if len(fields) > 4 && strings.HasPrefix(fields[4], "v") {
			orientation = engine.Vertical
		}
		return domain.Message{
			Type:    domain.PlaceBone,
			Payload: domain.PlaceBonePayload{Name: c.pieceName(fields[1]), Origin: cell, Orientation: orientation},
		}, nil
	case fields[0] == "random" && !c.battle:
		return domain.Message{Type: domain.PlaceRandomly}, nil
	case fields[0] == "reset" && !c.battle:
		return domain.Message{Type: domain.ResetSetup}, nil
	case fields[0] == "start" && !c.battle:
		return domain.Message{Type: domain.StartBattle}, nil
	default:
		return domain.Message{}, errors.Errorf("unknown command '%s'", fields[0])
	}
}

// pieceName resolves a case-insensitive prefix against the bones left to place.
func (c *client) pieceName(input string) string {
	for _, piece := range c.remaining {
		if strings.HasPrefix(strings.ToLower(piece.Name), strings.ToLower(input)) {
			return piece.Name
		}
	}
	return input
}

func parseCell(fields []string) (engine.Coordinate, error) {
	if len(fields) < 2 {
		return engine.Coordinate{}, errors.New("expected <row> <col>")
	}
	row, err := strconv.Atoi(fields[0])
	if err != nil {
		return engine.Coordinate{}, errors.WithMessage(err, "parse row")
	}
	col, err := strconv.Atoi(fields[1])
	if err != nil {
		return engine.Coordinate{}, errors.WithMessage(err, "parse col")
	}
	return engine.Coordinate{Row: row, Col: col}, nil
}

func (c *client) printBoards() {
	fmt.Printf("\033[H\033[J")
	bones := make(map[engine.Coordinate]bool)
	for _, piece := range c.fleet {
		for _, cell := range piece.Cells() {
			bones[cell] = true
		}
	}
	fmt.Printf("%-*s   %s\n", 3+2*c.gridSize, "your site", "rival site")
	header := "   "
	for col := 0; col < c.gridSize; col++ {
		header += fmt.Sprintf("%d ", col%10)
	}
	fmt.Printf("%s   %s\n", header, header)
	for row := 0; row < c.gridSize; row++ {
		own := fmt.Sprintf("%2d ", row)
		target := own
		for col := 0; col < c.gridSize; col++ {
			cell := engine.Coordinate{Row: row, Col: col}
			mark, ok := c.own[cell]
			if !ok {
				mark = cellEmpty
				if bones[cell] {
					mark = cellBone
				}
			}
			own += string(mark) + " "
			mark, ok = c.target[cell]
			if !ok {
				mark = cellEmpty
			}
			target += string(mark) + " "
		}
		fmt.Printf("%s   %s\n", own, target)
	}
	if len(c.remaining) > 0 {
		names := make([]string, 0, len(c.remaining))
		for _, piece := range c.remaining {
			names = append(names, fmt.Sprintf("%s(%d)", piece.Name, piece.Length))
		}
		fmt.Println("to bury: " + strings.Join(names, ", "))
	}
}

func (c *client) readMessage() (domain.Message, error) {
	_, r, err := c.conn.NextReader()
	if err != nil {
		return domain.Message{}, err
	}
	var msg domain.Message
	if err := jsoniter.NewDecoder(r).Decode(&msg); err != nil {
		return domain.Message{}, errors.WithMessage(err, "decode json msg")
	}
	return msg, nil
}

func (c *client) writeMessage(msg domain.Message) error {
	data, err := jsoniter.Marshal(msg)
	if err != nil {
		return errors.WithMessage(err, "encode json msg")
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// switchHost keeps the current port when the master is announced by name only.
func switchHost(current, master string) string {
	if strings.Contains(master, ":") {
		return master
	}
	_, port, err := net.SplitHostPort(current)
	if err != nil {
		return master
	}
	return net.JoinHostPort(master, port)
}
