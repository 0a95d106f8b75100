package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"nickandperla.net/tinyjs/internal/scanner"
	"nickandperla.net/tinyjs/internal/token"
	"nickandperla.net/tinyjs/pkg/tinyjs"
)

func printBanner(con *console) {
	con.println("tinyjs REPL (Ctrl+D to exit)")
	con.println("Unclosed brackets or a trailing \\ continue the input on the next line.")
	con.println("")
}

func runREPL(runtime *tinyjs.Runtime, con *console, stdin io.Reader) {
	f, ok := stdin.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		// Not a TTY, fall back to basic mode
		printBanner(con)
		runBasicREPL(runtime, con, stdin)
		return
	}
	runRawREPL(runtime, con, f)
}

// incomplete reports whether src leaves a bracket or a block comment open.
func incomplete(src string) bool {
	s := scanner.NewFromString(src)
	depth := 0
	for s.Err() == nil && s.Token() != token.EOF {
		switch s.Token() {
		case token.LPAREN, token.LBRACE, token.LBRACK:
			depth++
		case token.RPAREN, token.RBRACE, token.RBRACK:
			depth--
		}
		s.Next()
	}
	if err, ok := s.Err().(*scanner.SyntaxError); ok && err.Msg == "unterminated comment" {
		return true
	}
	return depth > 0
}

// lineBuffer collects the lines of one REPL entry.
type lineBuffer struct {
	sb strings.Builder
}

// add appends a line and returns the complete entry, or false if more lines
// are needed. A trailing backslash always asks for another line.
func (b *lineBuffer) add(line string) (string, bool) {
	more := strings.HasSuffix(line, "\\")
	b.sb.WriteString(strings.TrimSuffix(line, "\\"))
	b.sb.WriteString("\n")
	if more || incomplete(b.sb.String()) {
		return "", false
	}
	src := b.sb.String()
	b.sb.Reset()
	return src, true
}

func (b *lineBuffer) pending() bool {
	return b.sb.Len() > 0
}

func evalEntry(runtime *tinyjs.Runtime, con *console, input string) {
	if strings.TrimSpace(input) == "" {
		return
	}
	result, err := runtime.Eval(input)
	if err != nil {
		con.println(fmt.Sprintf("Error: %v", err))
		return
	}
	if result != "" {
		con.println(result)
	}
}

func prompt(con *console, buf *lineBuffer) {
	if buf.pending() {
		con.write("... ")
	} else {
		con.write(">>> ")
	}
}

// runBasicREPL handles non-TTY input (piped input)
func runBasicREPL(runtime *tinyjs.Runtime, con *console, stdin io.Reader) {
	reader := bufio.NewReader(stdin)
	var buf lineBuffer

	for {
		prompt(con, &buf)

		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			con.println("")
			return
		}
		input, ok := buf.add(strings.TrimRight(line, "\r\n"))
		if ok {
			evalEntry(runtime, con, input)
		}
		if err != nil {
			con.println("")
			return
		}
	}
}

// runRawREPL handles TTY input with line editing and history
func runRawREPL(runtime *tinyjs.Runtime, con *console, f *os.File) {
	fd := int(f.Fd())

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set raw mode: %v\n", err)
		printBanner(con)
		runBasicREPL(runtime, con, f)
		return
	}
	defer term.Restore(fd, oldState)

	con.raw = true
	defer func() { con.raw = false }()
	printBanner(con)

	ed := &editor{in: f, out: con.w}
	var buf lineBuffer
	for {
		prompt(con, &buf)

		line, eof := ed.readLine()
		if eof {
			con.write("\n")
			return
		}
		if input, ok := buf.add(line); ok {
			ed.remember(strings.TrimRight(input, "\n"))
			evalEntry(runtime, con, input)
		}
	}
}

// editor reads lines from a terminal in raw mode.
type editor struct {
	in      io.Reader
	out     io.Writer
	history []string
}

func (ed *editor) remember(entry string) {
	if strings.TrimSpace(entry) == "" || strings.Contains(entry, "\n") {
		return
	}
	if n := len(ed.history); n > 0 && ed.history[n-1] == entry {
		return
	}
	ed.history = append(ed.history, entry)
}

func (ed *editor) read() (byte, bool) {
	buf := make([]byte, 1)
	n, err := ed.in.Read(buf)
	if err != nil || n == 0 {
		return 0, false
	}
	return buf[0], true
}

// readLine reads a line in raw mode.
// Returns the line and whether EOF was encountered
func (ed *editor) readLine() (string, bool) {
	var line []rune
	cursor := 0 // Position in line (for arrow key navigation)
	hist := len(ed.history)

	// Helper to redraw line from cursor position
	redrawFromCursor := func() {
		// Clear from cursor to end of line
		fmt.Fprint(ed.out, "\x1b[K")
		for i := cursor; i < len(line); i++ {
			fmt.Fprint(ed.out, string(line[i]))
		}
		// Move cursor back to position
		if cursor < len(line) {
			fmt.Fprintf(ed.out, "\x1b[%dD", len(line)-cursor)
		}
	}

	replaceLine := func(text string) {
		if cursor > 0 {
			fmt.Fprintf(ed.out, "\x1b[%dD", cursor)
		}
		line = []rune(text)
		cursor = 0
		redrawFromCursor()
		if len(line) > 0 {
			fmt.Fprintf(ed.out, "\x1b[%dC", len(line))
		}
		cursor = len(line)
	}

	insert := func(r rune) {
		newLine := make([]rune, 0, len(line)+1)
		newLine = append(newLine, line[:cursor]...)
		newLine = append(newLine, r)
		newLine = append(newLine, line[cursor:]...)
		line = newLine
		cursor++
		fmt.Fprint(ed.out, string(r))
		if cursor < len(line) {
			redrawFromCursor()
		}
	}

	for {
		b, ok := ed.read()
		if !ok {
			return string(line), true
		}

		switch b {
		case 0x04: // Ctrl+D
			if len(line) == 0 {
				return "", true
			}
			// Delete character at cursor (like Delete key)
			if cursor < len(line) {
				line = append(line[:cursor], line[cursor+1:]...)
				redrawFromCursor()
			}

		case 0x03: // Ctrl+C
			fmt.Fprint(ed.out, "^C\r\n")
			return "", false

		case 0x0d, 0x0a: // Enter (CR or LF)
			fmt.Fprint(ed.out, "\r\n")
			return string(line), false

		case 0x7f, 0x08: // Backspace (DEL or BS)
			if cursor > 0 {
				cursor--
				line = append(line[:cursor], line[cursor+1:]...)
				fmt.Fprint(ed.out, "\b")
				redrawFromCursor()
			}

		case 0x1b: // ESC - arrow key sequence
			next, ok := ed.read()
			if !ok || next != '[' {
				continue
			}
			key, ok := ed.read()
			if !ok {
				continue
			}

			switch key {
			case 'A': // Up arrow - previous history entry
				if hist > 0 {
					hist--
					replaceLine(ed.history[hist])
				}
			case 'B': // Down arrow - next history entry
				if hist < len(ed.history)-1 {
					hist++
					replaceLine(ed.history[hist])
				} else if hist < len(ed.history) {
					hist++
					replaceLine("")
				}
			case 'C': // Right arrow
				if cursor < len(line) {
					cursor++
					fmt.Fprint(ed.out, "\x1b[C")
				}
			case 'D': // Left arrow
				if cursor > 0 {
					cursor--
					fmt.Fprint(ed.out, "\x1b[D")
				}
			case '3': // Delete key: ESC [ 3 ~
				if tilde, ok := ed.read(); ok && tilde == '~' && cursor < len(line) {
					line = append(line[:cursor], line[cursor+1:]...)
					redrawFromCursor()
				}
			}

		case 0x01: // Ctrl+A - beginning of line
			if cursor > 0 {
				fmt.Fprintf(ed.out, "\x1b[%dD", cursor)
				cursor = 0
			}

		case 0x05: // Ctrl+E - end of line
			if cursor < len(line) {
				fmt.Fprintf(ed.out, "\x1b[%dC", len(line)-cursor)
				cursor = len(line)
			}

		case 0x0b: // Ctrl+K - kill to end of line
			if cursor < len(line) {
				line = line[:cursor]
				fmt.Fprint(ed.out, "\x1b[K")
			}

		case 0x15: // Ctrl+U - kill to beginning of line
			if cursor > 0 {
				fmt.Fprintf(ed.out, "\x1b[%dD", cursor)
				line = line[cursor:]
				cursor = 0
				redrawFromCursor()
			}

		default:
			if b >= 0x20 && b < 0x7f {
				insert(rune(b))
			} else if b >= 0x80 {
				// UTF-8 multi-byte sequence - read remaining bytes
				utfBuf := []byte{b}
				numBytes := 0
				if b&0xE0 == 0xC0 {
					numBytes = 1
				} else if b&0xF0 == 0xE0 {
					numBytes = 2
				} else if b&0xF8 == 0xF0 {
					numBytes = 3
				}
				for i := 0; i < numBytes; i++ {
					c, ok := ed.read()
					if !ok {
						break
					}
					utfBuf = append(utfBuf, c)
				}
				insert([]rune(string(utfBuf))[0])
			}
		}
	}
}
