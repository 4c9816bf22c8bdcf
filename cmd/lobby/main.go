package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gookit/color"
	"github.com/humanbelnik/moviematch/internal/app"
	"github.com/humanbelnik/moviematch/internal/config"
	infra_redis_directory "github.com/humanbelnik/moviematch/internal/infra/redis/directory"
	infra_redis_init "github.com/humanbelnik/moviematch/internal/infra/redis/init"
	"github.com/humanbelnik/moviematch/internal/model"
	"github.com/olekukonko/tablewriter"
)

// lobby prints the rooms currently advertised in the redis directory.
func main() {
	timeout := flag.Duration("timeout", 5*time.Second, "redis timeout")
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	redisConn := infra_redis_init.MustEstablishConn(cfg.Redis)
	defer redisConn.Close()

	directory := infra_redis_directory.New(redisConn, cfg.Redis.Prefix+":"+app.DirectoryKey)
	entries, err := directory.List(ctx)
	if err != nil {
		log.Fatalf("failed to list rooms: %v", err)
	}

	header := fmt.Sprintf("%d open room(s)", len(entries))
	fmt.Println(color.New(color.BgBlack, color.FgGreen).Render(header))
	if len(entries) == 0 {
		return
	}

	render(entries, time.Now())
}

func render(entries []model.DirectoryEntry, now time.Time) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Code", "Participants", "Created", "Age", "Room ID"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, e := range entries {
		table.Append([]string{
			e.InviteCode,
			strconv.Itoa(e.ParticipantCount),
			e.CreatedAt.Format("2006-01-02 15:04:05"),
			now.Sub(e.CreatedAt).Truncate(time.Second).String(),
			e.ID,
		})
	}

	table.Render()
}
