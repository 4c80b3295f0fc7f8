package preset

import "sort"

// Preset is a built-in group of hostnames toggled as one unit.
type Preset struct {
	Name  string   `json:"name"`
	Icon  string   `json:"icon"`
	Sites []string `json:"sites"`
}

// Catalog is the compile-time preset catalog.
var Catalog = map[string]Preset{
	"social": {
		Name: "Social Media",
		Icon: "📱",
		Sites: []string{
			"facebook.com", "instagram.com", "twitter.com", "x.com", "tiktok.com",
			"snapchat.com", "linkedin.com", "reddit.com", "pinterest.com",
			"tumblr.com", "threads.net", "mastodon.social",
		},
	},
	"video": {
		Name: "Video & Streaming",
		Icon: "📺",
		Sites: []string{
			"youtube.com", "netflix.com", "twitch.tv", "hulu.com", "disneyplus.com",
			"max.com", "primevideo.com", "vimeo.com", "dailymotion.com",
			"crunchyroll.com", "peacocktv.com",
		},
	},
	"news": {
		Name: "News & Media",
		Icon: "📰",
		Sites: []string{
			"cnn.com", "foxnews.com", "nytimes.com", "bbc.com", "huffpost.com",
			"buzzfeed.com", "vice.com", "theguardian.com", "washingtonpost.com",
			"news.google.com", "news.ycombinator.com",
		},
	},
	"shopping": {
		Name: "Shopping",
		Icon: "🛒",
		Sites: []string{
			"amazon.com", "ebay.com", "etsy.com", "walmart.com", "target.com",
			"aliexpress.com", "wish.com", "shein.com", "temu.com", "bestbuy.com",
		},
	},
	"gaming": {
		Name: "Gaming",
		Icon: "🎮",
		Sites: []string{
			"twitch.tv", "discord.com", "steampowered.com", "epicgames.com",
			"roblox.com", "minecraft.net", "itch.io", "gog.com", "origin.com",
			"ubisoft.com",
		},
	},
}

// Get looks up a preset by id.
func Get(id string) (Preset, bool) {
	p, ok := Catalog[id]
	return p, ok
}

// IDs returns all preset ids in sorted order.
func IDs() []string {
	ids := make([]string, 0, len(Catalog))
	for id := range Catalog {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
