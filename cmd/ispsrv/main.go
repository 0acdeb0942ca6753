package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/adas-eyes/ispcore/params"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"

	yml "gopkg.in/yaml.v2"
)

var (
	// Version is the version number.  Typically injected via ldflags with git build
	Version = "1"

	// ConfigFileName is what it sounds like
	ConfigFileName = "ispsrv.yml"
	k              = koanf.New(".")
)

func setupconfig() {
	k.Load(structs.Provider(defaultConfig(), "koanf"), nil)
	if err := k.Load(file.Provider(ConfigFileName), yaml.Parser()); err != nil {
		errtxt := err.Error()
		if !strings.Contains(errtxt, "no such") { // file missing, who cares
			log.Fatalf("error loading config: %v", err)
		}
	}
}

func root() {
	str := `ispsrv runs raw camera frames through the ISP stages and serves the
result over HTTP.

Usage:
	ispsrv <command>

Commands:
	run
	help
	mkconf
	conf
	params
	version`
	fmt.Println(str)
}

func help() {
	str := `ispsrv is amenable to configuration via its .yaml file.  For a primer on YAML, see
https://yaml.org/start.html

Without a configuration file the server listens on :8000, mounts its routes
under /isp and processes frames with the built in parameter bundle.

Params names a parameter bundle; keys it leaves out keep their defaults.
Watch: true reloads it whenever it changes.  The bundle in use can also be
read and replaced over HTTP (GET/POST <Endpoint>/params).

POST <Endpoint>/process takes a 16-bit FITS frame and returns the processed
frame.  Query parameters:
	stages	comma separated stage list, default from Stages
	fmt	fits, png or jpg
	width	preview width for png and jpg

Stages: depwl, dpc, wbgain, rgbgamma, sharpen, and the bridges raw2bgr and
bgr2y that carry data from raw to BGR and from BGR to luma.

Prometheus metrics are served at /metrics, the route list at /endpoints.`
	fmt.Println(str)
}

func mkconf() {
	c := Config{}
	err := k.Unmarshal("", &c)
	if err != nil {
		log.Fatal(err)
	}
	f, err := os.Create(ConfigFileName)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	err = yml.NewEncoder(f).Encode(c)
	if err != nil {
		log.Fatal(err)
	}
}

func printconf() {
	c := Config{}
	k.Unmarshal("", &c)
	err := yml.NewEncoder(os.Stdout).Encode(c)
	if err != nil {
		log.Fatal(err)
	}
}

func printparams() {
	c := Config{}
	k.Unmarshal("", &c)
	prm, err := loadParams(c)
	if err != nil {
		log.Fatal(err)
	}
	err = params.WriteYaml(os.Stdout, prm)
	if err != nil {
		log.Fatal(err)
	}
}

func pversion() {
	fmt.Printf("ispsrv version %v\n", Version)
}

func run() {
	c := Config{}
	err := k.Unmarshal("", &c)
	if err != nil {
		log.Fatal(err)
	}
	prm, err := loadParams(c)
	if err != nil {
		log.Fatal(err)
	}
	svc := NewService(c, prm)
	if c.Watch && c.Params != "" {
		err = params.Watch(c.Params, func(p params.Prms, err error) {
			if err != nil {
				log.Println("parameter reload failed: ", err)
				return
			}
			svc.SetParams(p)
			log.Println("parameters reloaded from ", c.Params)
		})
		if err != nil {
			log.Fatal(err)
		}
	}
	mux := BuildMux(c, svc)
	log.Println("now listening for requests at ", c.Addr)
	log.Fatal(http.ListenAndServe(c.Addr, mux))
}

func main() {
	var cmd string
	args := os.Args
	if len(args) == 1 {
		root()
		return
	}
	setupconfig()
	cmd = args[1]
	cmd = strings.ToLower(cmd)
	switch cmd {
	case "help":
		help()
		return
	case "mkconf":
		mkconf()
		return
	case "conf":
		printconf()
		return
	case "params":
		printparams()
		return
	case "run":
		run()
		return
	case "version":
		pversion()
		return
	default:
		log.Fatal("unknown command")
	}
}
