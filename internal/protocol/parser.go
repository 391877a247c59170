package protocol

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var (
	ErrInvalidCommand  = errors.New("invalid command")
	ErrInvalidArgs     = errors.New("invalid arguments")
	ErrInvalidPayload  = errors.New("invalid payload")
	ErrPayloadTooLarge = errors.New("payload too large")
)

// DefaultMaxPayload bounds the payload of one command when NewParser is
// given no limit.
const DefaultMaxPayload = 16 * 1024 * 1024

// Command represents a parsed command
type Command struct {
	Name    string
	Args    []string
	Payload []byte
}

// Parser reads commands from a line-oriented stream. Lines end in "\n" or
// "\r\n"; SET and MSET are followed by a raw payload and a line terminator.
//
// Declared payload lengths are checked against maxPayload before anything is
// allocated. An oversized command yields ErrPayloadTooLarge and the parser
// skips the following line, where the payload would have been.
type Parser struct {
	reader     *bufio.Reader
	maxPayload int
}

// NewParser creates a new protocol parser. maxPayload <= 0 selects
// DefaultMaxPayload.
func NewParser(r io.Reader, maxPayload int) *Parser {
	if maxPayload <= 0 {
		maxPayload = DefaultMaxPayload
	}
	return &Parser{
		reader:     bufio.NewReader(r),
		maxPayload: maxPayload,
	}
}

// ParseCommand parses a single command from the input
func (p *Parser) ParseCommand() (*Command, error) {
	line, err := p.reader.ReadString('\n')
	if err != nil {
		// A final line without terminator is still a command.
		if err != io.EOF || line == "" {
			return nil, err
		}
	}

	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")

	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil, ErrInvalidCommand
	}

	cmd := &Command{
		Name: strings.ToUpper(parts[0]),
		Args: parts[1:],
	}

	if cmd.requiresPayload() {
		payload, err := p.readPayload(cmd)
		if err != nil {
			if errors.Is(err, ErrPayloadTooLarge) {
				p.skipLine()
			}
			return nil, err
		}
		cmd.Payload = payload
	}

	return cmd, nil
}

// requiresPayload checks if the command requires a payload
func (cmd *Command) requiresPayload() bool {
	switch cmd.Name {
	case "SET", "MSET":
		return true
	default:
		return false
	}
}

// readPayload reads the payload for commands that require it
func (p *Parser) readPayload(cmd *Command) ([]byte, error) {
	switch cmd.Name {
	case "SET":
		return p.readSinglePayload(cmd)
	case "MSET":
		return p.readMultiPayload(cmd)
	default:
		return nil, nil
	}
}

// readSinglePayload reads the payload of SET <key> <len> [EX <seconds>]
func (p *Parser) readSinglePayload(cmd *Command) ([]byte, error) {
	if len(cmd.Args) < 2 {
		return nil, ErrInvalidArgs
	}

	length, err := p.parseLength(cmd.Args[1])
	if err != nil {
		return nil, err
	}

	return p.readTerminated(length)
}

// readMultiPayload reads the concatenated payloads of MSET k1 len1 k2 len2 ...
func (p *Parser) readMultiPayload(cmd *Command) ([]byte, error) {
	if len(cmd.Args) == 0 || len(cmd.Args)%2 != 0 {
		return nil, ErrInvalidArgs
	}

	totalLength := 0
	for i := 1; i < len(cmd.Args); i += 2 {
		length, err := p.parseLength(cmd.Args[i])
		if err != nil {
			return nil, err
		}
		if length > p.maxPayload-totalLength {
			return nil, ErrPayloadTooLarge
		}
		totalLength += length
	}

	return p.readTerminated(totalLength)
}

// parseLength parses a declared payload length and checks it against the
// parser's limit.
func (p *Parser) parseLength(s string) (int, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(s, "-") {
			return 0, ErrPayloadTooLarge
		}
		return 0, ErrInvalidArgs
	}
	if n < 0 {
		return 0, ErrInvalidArgs
	}
	if n > int64(p.maxPayload) {
		return 0, ErrPayloadTooLarge
	}
	return int(n), nil
}

// skipLine discards input up to and including the next newline.
func (p *Parser) skipLine() {
	for {
		_, err := p.reader.ReadSlice('\n')
		if err != bufio.ErrBufferFull {
			return
		}
	}
}

// readTerminated reads exactly n bytes followed by "\r\n" or "\n".
func (p *Parser) readTerminated(n int) ([]byte, error) {
	payload := make([]byte, n)
	if _, err := io.ReadFull(p.reader, payload); err != nil {
		return nil, err
	}

	c, err := p.reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if c == '\r' {
		c, err = p.reader.ReadByte()
		if err != nil {
			return nil, err
		}
	}
	if c != '\n' {
		return nil, ErrInvalidPayload
	}

	return payload, nil
}

// Response helpers

// WriteError writes an error response
func WriteError(w io.Writer, code, message string) error {
	_, err := fmt.Fprintf(w, "ERR %s %s\r\n", code, message)
	return err
}

// WriteOK writes an OK response
func WriteOK(w io.Writer) error {
	_, err := w.Write([]byte("OK\r\n"))
	return err
}

// WriteOKCount writes an OK response carrying a count (MSET)
func WriteOKCount(w io.Writer, n int) error {
	_, err := fmt.Fprintf(w, "OK %d\r\n", n)
	return err
}

// WritePong writes a PONG response
func WritePong(w io.Writer) error {
	_, err := w.Write([]byte("PONG\r\n"))
	return err
}

// WriteNotFound writes a NOT_FOUND response
func WriteNotFound(w io.Writer) error {
	_, err := w.Write([]byte("NOT_FOUND\r\n"))
	return err
}

// WriteNotFoundKey writes a NOT_FOUND response naming key (MGET)
func WriteNotFoundKey(w io.Writer, key string) error {
	_, err := fmt.Fprintf(w, "NOT_FOUND %s\r\n", key)
	return err
}

// WriteValue writes a VALUE response with payload
func WriteValue(w io.Writer, value []byte) error {
	if _, err := fmt.Fprintf(w, "VALUE %d\r\n", len(value)); err != nil {
		return err
	}
	return writePayload(w, value)
}

// WriteItems writes the ITEMS header announcing n ITEM records
func WriteItems(w io.Writer, n int) error {
	_, err := fmt.Fprintf(w, "ITEMS %d\r\n", n)
	return err
}

// WriteItem writes one key/value record of a multi-item response
func WriteItem(w io.Writer, key string, value []byte) error {
	if _, err := fmt.Fprintf(w, "ITEM %s %d\r\n", key, len(value)); err != nil {
		return err
	}
	return writePayload(w, value)
}

func writePayload(w io.Writer, value []byte) error {
	if _, err := w.Write(value); err != nil {
		return err
	}
	_, err := w.Write([]byte("\r\n"))
	return err
}

// WriteDeleted writes a DELETED response
func WriteDeleted(w io.Writer, deleted bool) error {
	val := 0
	if deleted {
		val = 1
	}
	_, err := fmt.Fprintf(w, "DELETED %d\r\n", val)
	return err
}

// WriteInteger writes an integer response (TTL, LEN)
func WriteInteger(w io.Writer, value int64) error {
	_, err := fmt.Fprintf(w, "%d\r\n", value)
	return err
}

// WriteStat writes one name=value line of a STATS response
func WriteStat(w io.Writer, name, value string) error {
	_, err := fmt.Fprintf(w, "%s=%s\r\n", name, value)
	return err
}

// WriteEnd terminates a multi-line response
func WriteEnd(w io.Writer) error {
	_, err := w.Write([]byte("END\r\n"))
	return err
}
