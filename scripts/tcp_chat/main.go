package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/vovakirdan/wirerelay/internal/chatclient"
	"github.com/vovakirdan/wirerelay/internal/proto"
)

func main() {
	addr := flag.String("addr", "localhost:8000", "relay address")
	name := flag.String("name", "", "nickname (prompted when empty)")
	timeout := flag.Duration("timeout", 5*time.Second, "dial timeout")
	flag.Parse()

	stdin := bufio.NewScanner(os.Stdin)
	if *name == "" {
		fmt.Print("nickname: ")
		if !stdin.Scan() {
			return
		}
		*name = stdin.Text()
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	c, err := chatclient.Dial(ctx, *addr)
	if err != nil {
		log.Fatalf("dial: %v", err)
	}
	defer c.Close()

	if err := c.Login(*name); err != nil {
		if errors.Is(err, chatclient.ErrBusy) {
			log.Fatalf("server is full, try again later")
		}
		log.Fatalf("login: %v", err)
	}
	fmt.Printf("logged in as %s, /quit to leave\n", *name)

	go func() {
		for {
			ev, err := c.Next()
			if err != nil {
				if !errors.Is(err, proto.ErrDisconnected) {
					log.Printf("read: %v", err)
				}
				os.Exit(0)
			}
			switch ev.Op {
			case proto.OpNew:
				fmt.Printf("* %s joined\n", ev.Name)
			case proto.OpOut:
				fmt.Printf("* %s left\n", ev.Name)
			case proto.OpMsg:
				fmt.Printf("<%s> %s\n", ev.Name, ev.Text)
			default:
				fmt.Println(ev.Raw)
			}
		}
	}()

	for stdin.Scan() {
		line := stdin.Text()
		if line == "" {
			continue
		}
		if line == "/quit" {
			break
		}
		if err := c.Send(line); err != nil {
			log.Fatalf("send: %v", err)
		}
	}
	_ = c.Logout()
}
