package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/IvanChernomyrdin/go-artfolio/internal/agent/api"
	"github.com/IvanChernomyrdin/go-artfolio/internal/shared/models"
	"github.com/IvanChernomyrdin/go-artfolio/internal/shared/utils"
)

// printArtworks печатает таблицу: ID, категория, название, картинка.
func printArtworks(w io.Writer, imagesBase string, list []models.Artwork) {
	if len(list) == 0 {
		fmt.Fprintln(w, "no artworks")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCATEGORY\tTITLE\tIMAGE")
	for _, a := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", a.ID, categoryLabel(a.CategoryID), a.Title,
			dash(api.ResolveImageSrc(imagesBase, utils.Deref(a.Image))))
	}
	tw.Flush()
}

// printArtwork печатает одну работу построчно.
func printArtwork(w io.Writer, imagesBase string, a models.Artwork) {
	fmt.Fprintf(w, "id:          %d\n", a.ID)
	fmt.Fprintf(w, "title:       %s\n", a.Title)
	fmt.Fprintf(w, "description: %s\n", dash(utils.Deref(a.Description)))
	fmt.Fprintf(w, "category:    %s\n", categoryLabel(a.CategoryID))
	fmt.Fprintf(w, "image:       %s\n", dash(api.ResolveImageSrc(imagesBase, utils.Deref(a.Image))))
	fmt.Fprintf(w, "created_at:  %s\n", formatTime(a.CreatedAt))
	fmt.Fprintf(w, "updated_at:  %s\n", formatTime(a.UpdatedAt))
}

func categoryLabel(id *int64) string {
	if id == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *id)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}
