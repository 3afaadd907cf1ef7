package main

import (
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bodgit/anycrc"
	"github.com/bodgit/anycrc/bitstream"
	"github.com/urfave/cli/v2"
)

const defaultDB = "anycrc.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func lookupOrParse(s string) (anycrc.Params, error) {
	s = strings.TrimSpace(s)
	const customPrefix = "custom:"
	if strings.HasPrefix(strings.ToLower(s), customPrefix) {
		return anycrc.ParseParams(s[len(customPrefix):])
	}
	if p, ok := anycrc.Lookup(s); ok {
		return p, nil
	}
	return anycrc.Params{}, fmt.Errorf("unknown CRC algorithm %q", s)
}

func inputFormat(s string) (bitstream.Format, error) {
	switch s {
	case "binary":
		return bitstream.Raw, nil
	case "hex":
		return bitstream.Hex, nil
	case "lsb_hex":
		return bitstream.LSBHex, nil
	case "01":
		return bitstream.Bin, nil
	case "lsb_01":
		return bitstream.LSBBin, nil
	}
	return 0, fmt.Errorf("unknown input format %q", s)
}

func formatValue(v uint64, width int, format string) string {
	switch format {
	case "hex":
		return fmt.Sprintf("%0*x", (width+3)/4, v)
	case "decimal":
		return strconv.FormatUint(v, 10)
	default:
		return fmt.Sprintf("0x%0*x", (width+3)/4, v)
	}
}

func describe(p anycrc.Params) string {
	w := (p.Width + 3) / 4
	return fmt.Sprintf("%s width=%d poly=0x%0*x init=0x%0*x refin=%t refout=%t xorout=0x%0*x",
		p.Name, p.Width, w, p.Poly, w, p.Init, p.RefIn, p.RefOut, w, p.XorOut)
}

func calc(c *cli.Context) error {
	if c.String("crc") == "" {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	if c.Bool("residue") && c.Bool("interim-remainder") {
		return cli.NewExitError("at most one of --residue and --interim-remainder may be used", 1)
	}

	p, err := lookupOrParse(c.String("crc"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	newCRC := anycrc.New
	if c.Bool("tableless") {
		newCRC = anycrc.NewTableless
	}
	crc, err := newCRC(p)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	var in io.ReadCloser = os.Stdin
	if c.NArg() > 0 {
		if in, err = os.Open(c.Args().First()); err != nil {
			return cli.NewExitError(err, 1)
		}
	}
	defer in.Close()

	format, err := inputFormat(c.String("input-format"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	scanner, err := bitstream.New(in, format, p.RefIn)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	state := crc.Init()
	if s := c.String("continue-from"); s != "" {
		if state, err = strconv.ParseUint(s, 0, 64); err != nil {
			return cli.NewExitError(fmt.Sprintf("invalid interim remainder %q", s), 1)
		}
	}

	maxBits := c.Int64("max-input-bits")
	var bitsProcessed int64
	for maxBits != 0 {
		chunk, err := scanner.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		bits := int64(chunk.Bits)
		if maxBits > 0 {
			if bits > maxBits {
				bits = maxBits
			}
			maxBits -= bits
		}
		state = crc.UpdateBits(state, chunk.Data, int(bits))
		bitsProcessed += bits
	}

	v := crc.Finalize(state)
	label := "crc"
	switch {
	case c.Bool("interim-remainder"):
		v, label = state, "interim remainder"
	case c.Bool("residue"):
		v, label = crc.ResidueOf(state), "residue"
	}

	out := formatValue(v, p.Width, c.String("output-format"))
	if c.Bool("quiet") {
		fmt.Println(out)
		return nil
	}
	fmt.Println(describe(p))
	fmt.Printf("number of bits processed: %d [%d byte(s) +%d bit(s)]\n", bitsProcessed, bitsProcessed/8, bitsProcessed&7)
	fmt.Printf("%s: %s\n", label, out)

	return nil
}

func main() {
	app := cli.NewApp()

	app.Name = "anycrc"
	app.Usage = "Parametric CRC calculator"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"ANYCRC_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to the checksum manifest database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	crcFlag := &cli.StringFlag{
		Name:    "crc",
		Aliases: []string{"c"},
		Usage:   "name of the CRC algorithm or \"custom: width=X poly=Y ...\"",
	}
	outputFormatFlag := &cli.StringFlag{
		Name:    "output-format",
		Aliases: []string{"f"},
		Value:   "0xhex",
		Usage:   "output format: 0xhex, hex or decimal",
	}
	quietFlag := &cli.BoolFlag{
		Name:    "quiet",
		Aliases: []string{"q"},
		Usage:   "output only the result of the calculation",
	}

	app.Commands = []*cli.Command{
		{
			Name:        "calc",
			Usage:       "Calculate the CRC of a file or stdin",
			Description: "",
			ArgsUsage:   "[FILE]",
			Flags: []cli.Flag{
				crcFlag,
				&cli.StringFlag{
					Name:    "input-format",
					Aliases: []string{"i"},
					Value:   "binary",
					Usage:   "input data format: binary, hex, lsb_hex, 01 or lsb_01",
				},
				outputFormatFlag,
				&cli.BoolFlag{
					Name:  "residue",
					Usage: "output the residue instead of the final CRC (skip the xorout step)",
				},
				&cli.BoolFlag{
					Name:    "interim-remainder",
					Aliases: []string{"r"},
					Usage:   "output an interim remainder instead of the final CRC",
				},
				&cli.StringFlag{
					Name:    "continue-from",
					Aliases: []string{"k"},
					Usage:   "continue the calculation from the specified interim remainder",
				},
				&cli.Int64Flag{
					Name:    "max-input-bits",
					Aliases: []string{"m"},
					Value:   -1,
					Usage:   "maximum number of bits to process from the input",
				},
				&cli.BoolFlag{
					Name:  "tableless",
					Usage: "process bit-serially without building a lookup table",
				},
				quietFlag,
			},
			Action: calc,
		},
		{
			Name:        "residue-const",
			Usage:       "Calculate the residue constant of a CRC algorithm",
			Description: "The residue constant requires no input data.",
			Flags:       []cli.Flag{crcFlag, outputFormatFlag, quietFlag},
			Action: func(c *cli.Context) error {
				if c.String("crc") == "" {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				p, err := lookupOrParse(c.String("crc"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				crc, err := anycrc.New(p)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				out := formatValue(anycrc.ResidueConst(crc), p.Width, c.String("output-format"))
				if c.Bool("quiet") {
					fmt.Println(out)
					return nil
				}
				fmt.Println(describe(p))
				fmt.Printf("residue constant: %s\n", out)

				return nil
			},
		},
		{
			Name:        "list",
			Usage:       "List and self-test all built-in CRC algorithms",
			Description: "",
			Action: func(c *cli.Context) error {
				failed := 0
				for _, p := range anycrc.Catalogue {
					crc, err := anycrc.New(p)
					if err != nil {
						return cli.NewExitError(err, 1)
					}

					check := crc.Checksum([]byte("123456789"))
					residue := anycrc.ResidueConst(crc)
					naive := anycrc.ResidueConstNaive(crc, nil)

					status := "ok"
					if check != p.Check || residue != p.Residue || naive != residue {
						status = "FAILED"
						failed++
					}

					w := (p.Width + 3) / 4
					fmt.Printf("%-25s check=0x%0*x residue=0x%0*x %s\n", p.Name, w, check, w, residue, status)
				}
				if failed > 0 {
					return cli.NewExitError(fmt.Sprintf("%d algorithm(s) failed the self-test", failed), 1)
				}
				return nil
			},
		},
		{
			Name:        "scan",
			Usage:       "Scan filesystem and record file checksums in the manifest",
			Description: "",
			ArgsUsage:   "DIRECTORY",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "crc",
					Aliases: []string{"c"},
					Value:   "CRC-32/ISO-HDLC",
					Usage:   "name of the CRC algorithm or \"custom: width=X poly=Y ...\"",
				},
			},
			Action: func(c *cli.Context) error {
				return runManifest(c, (*anycrc.Manifest).Scan)
			},
		},
		{
			Name:        "verify",
			Usage:       "Verify file checksums against the manifest",
			Description: "",
			ArgsUsage:   "DIRECTORY",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "crc",
					Aliases: []string{"c"},
					Value:   "CRC-32/ISO-HDLC",
					Usage:   "name of the CRC algorithm or \"custom: width=X poly=Y ...\"",
				},
			},
			Action: func(c *cli.Context) error {
				return runManifest(c, (*anycrc.Manifest).Verify)
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runManifest(c *cli.Context, fn func(*anycrc.Manifest, string) error) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}

	p, err := lookupOrParse(c.String("crc"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	db, err := anycrc.NewManifestDB(c.String("db"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer db.Close()

	m, err := anycrc.NewManifest(db, p, logger)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	if err := fn(m, c.Args().First()); err != nil {
		return cli.NewExitError(err, 1)
	}

	return nil
}
