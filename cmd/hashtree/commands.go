package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gordian-engine/hashtree"
	"github.com/gordian-engine/hashtree/htitem"
	"github.com/urfave/cli/v2"
)

var errProofRejected = errors.New("proof does not verify")

// readItems reads items from the single optional FILE argument,
// or from standard input when it is absent.
func (s *session) readItems(cCtx *cli.Context) ([][]byte, error) {
	if cCtx.NArg() > 1 {
		return nil, fmt.Errorf("expected at most one FILE argument, got %d", cCtx.NArg())
	}

	var r io.Reader = cCtx.App.Reader
	name := "stdin"
	if cCtx.NArg() == 1 {
		name = cCtx.Args().First()
		f, err := os.Open(name)
		if err != nil {
			return nil, fmt.Errorf("failed to open items: %w", err)
		}
		defer f.Close()
		r = f
	}

	items, err := htitem.Read(r, s.format)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s items from %s: %w", s.format, name, err)
	}
	return items, nil
}

func (s *session) buildTree(cCtx *cli.Context) (*hashtree.Tree, error) {
	items, err := s.readItems(cCtx)
	if err != nil {
		return nil, err
	}

	b := hashtree.NewBuilder(s.log, hashtree.BuilderConfig{
		Hasher:            s.hasher,
		LeafWorkers:       s.cfg.Tree.LeafWorkers,
		ParallelThreshold: s.cfg.Tree.ParallelThreshold,
	})
	t := b.Build(cCtx.Context, items)

	if t.Mutated() {
		s.log.Warn(
			"Tree contains equal adjacent digests; its root also commits to a different item list",
			"leaves", t.LeafCount(),
		)
	}
	return t, nil
}

func (s *session) rootCmd(cCtx *cli.Context) error {
	t, err := s.buildTree(cCtx)
	if err != nil {
		return err
	}

	root, ok := t.Root()
	if !ok {
		_, err = fmt.Fprintln(cCtx.App.Writer, "(empty)")
		return err
	}
	_, err = fmt.Fprintln(cCtx.App.Writer, hex.EncodeToString(root))
	return err
}

func (s *session) layersCmd(cCtx *cli.Context) error {
	t, err := s.buildTree(cCtx)
	if err != nil {
		return err
	}

	var sb strings.Builder
	for _, layer := range t.Layers() {
		for i, d := range layer {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(hex.EncodeToString(d))
		}
		sb.WriteByte('\n')
	}
	_, err = io.WriteString(cCtx.App.Writer, sb.String())
	return err
}

func (s *session) proveCmd(cCtx *cli.Context) error {
	t, err := s.buildTree(cCtx)
	if err != nil {
		return err
	}

	p, err := t.Prove(cCtx.Int("index"))
	if err != nil {
		return fmt.Errorf("cannot prove item: %w", err)
	}

	b, err := p.MarshalBinary()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cCtx.App.Writer, hex.EncodeToString(b))
	return err
}

func (s *session) verifyCmd(cCtx *cli.Context) error {
	item, err := verifyItem(cCtx)
	if err != nil {
		return err
	}

	root, err := hex.DecodeString(cCtx.String("root"))
	if err != nil {
		return fmt.Errorf("failed to decode root: %w", err)
	}

	pb, err := hex.DecodeString(cCtx.String("proof"))
	if err != nil {
		return fmt.Errorf("failed to decode proof hex: %w", err)
	}
	var p hashtree.Proof
	if err := p.UnmarshalBinary(pb); err != nil {
		return err
	}

	if !p.Verify(s.hasher, root, item) {
		s.log.Info(
			"Proof rejected",
			"index", p.Index,
			"leaves", p.LeafCount,
			"hasher", s.cfg.Tree.Hasher,
		)
		return errProofRejected
	}

	_, err = fmt.Fprintln(cCtx.App.Writer, "ok")
	return err
}

func verifyItem(cCtx *cli.Context) ([]byte, error) {
	hasText, hasHex := cCtx.IsSet("item"), cCtx.IsSet("item-hex")
	switch {
	case hasText == hasHex:
		return nil, errors.New("exactly one of --item or --item-hex is required")
	case hasHex:
		b, err := hex.DecodeString(cCtx.String("item-hex"))
		if err != nil {
			return nil, fmt.Errorf("failed to decode item: %w", err)
		}
		return b, nil
	default:
		items, err := htitem.FromStrings([]string{cCtx.String("item")})
		if err != nil {
			return nil, err
		}
		return items[0], nil
	}
}
