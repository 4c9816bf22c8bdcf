package infra_catalog_memory

import "github.com/humanbelnik/moviematch/internal/model"

func price(p string) *string {
	return &p
}

// Seed is the default catalog served when no external source is configured.
func Seed() []model.Movie {
	return []model.Movie{
		{
			ID:       "1",
			Title:    "Knives Out",
			Year:     2019,
			Poster:   "https://image.tmdb.org/t/p/w500/pThyQovXQrw2m0s9x82twj48Jq4.jpg",
			Overview: "A detective investigates the death of a patriarch of an eccentric, combative family.",
			Genres:   []string{"Mystery", "Comedy", "Crime"},
			Runtime:  130,
			Rating:   7.9,
			Offers: []model.StreamingOffer{
				{Service: "Netflix", Link: "https://netflix.com", Quality: "HD"},
				{Service: "Amazon Prime", Link: "https://amazon.com", Quality: "HD", Price: price("$3.99")},
			},
		},
		{
			ID:       "2",
			Title:    "The Grand Budapest Hotel",
			Year:     2014,
			Poster:   "https://image.tmdb.org/t/p/w500/eWdyYQreja6JGCzqHWXpWHDrrPo.jpg",
			Overview: "A writer encounters the owner of an aging high-class hotel, who tells him of his early years.",
			Genres:   []string{"Comedy", "Drama"},
			Runtime:  99,
			Rating:   8.1,
			Offers: []model.StreamingOffer{
				{Service: "Disney+", Link: "https://disneyplus.com", Quality: "HD"},
				{Service: "Hulu", Link: "https://hulu.com", Quality: "HD"},
			},
		},
		{
			ID:       "3",
			Title:    "Parasite",
			Year:     2019,
			Poster:   "https://image.tmdb.org/t/p/w500/7IiTTgloJzvGI1TAYymCfbfl3vT.jpg",
			Overview: "A poor family schemes to become employed by a wealthy family by infiltrating their household.",
			Genres:   []string{"Thriller", "Drama", "Comedy"},
			Runtime:  132,
			Rating:   8.6,
			Offers: []model.StreamingOffer{
				{Service: "Hulu", Link: "https://hulu.com", Quality: "HD"},
				{Service: "Amazon Prime", Link: "https://amazon.com", Quality: "4K", Price: price("$2.99")},
			},
		},
		{
			ID:       "4",
			Title:    "Inception",
			Year:     2010,
			Poster:   "https://image.tmdb.org/t/p/w500/9gk7adHYeDvHkCSEqAvQNLV5Uge.jpg",
			Overview: "A thief who steals corporate secrets through dream-sharing technology is given the inverse task.",
			Genres:   []string{"Action", "Sci-Fi", "Thriller"},
			Runtime:  148,
			Rating:   8.8,
			Offers: []model.StreamingOffer{
				{Service: "Netflix", Link: "https://netflix.com", Quality: "4K"},
				{Service: "HBO Max", Link: "https://hbomax.com", Quality: "4K"},
			},
		},
		{
			ID:       "5",
			Title:    "Everything Everywhere All at Once",
			Year:     2022,
			Poster:   "https://image.tmdb.org/t/p/w500/w3LxiVYdWWRvEVdn5RYq6jIqkb1.jpg",
			Overview: "An aging Chinese immigrant is swept up in an insane adventure in which she alone can save the world.",
			Genres:   []string{"Action", "Adventure", "Comedy"},
			Runtime:  139,
			Rating:   7.8,
			Offers: []model.StreamingOffer{
				{Service: "Amazon Prime", Link: "https://amazon.com", Quality: "4K"},
				{Service: "Apple TV+", Link: "https://apple.com", Quality: "HD", Price: price("$4.99")},
			},
		},
		{
			ID:       "6",
			Title:    "The Batman",
			Year:     2022,
			Poster:   "https://image.tmdb.org/t/p/w500/b0PlSFdDwbyK0cf5RxwDpaOJQvQ.jpg",
			Overview: "When a sadistic serial killer begins murdering key political figures in Gotham, Batman is forced to investigate.",
			Genres:   []string{"Action", "Crime", "Drama"},
			Runtime:  176,
			Rating:   7.8,
			Offers: []model.StreamingOffer{
				{Service: "HBO Max", Link: "https://hbomax.com", Quality: "4K"},
				{Service: "Amazon Prime", Link: "https://amazon.com", Quality: "HD", Price: price("$5.99")},
			},
		},
		{
			ID:       "7",
			Title:    "Dune",
			Year:     2021,
			Poster:   "https://image.tmdb.org/t/p/w500/d5NXSklXo0qyIYkgV94XAgMIckC.jpg",
			Overview: "Paul Atreides, a brilliant and gifted young man born into a great destiny beyond his understanding.",
			Genres:   []string{"Adventure", "Drama", "Sci-Fi"},
			Runtime:  155,
			Rating:   8.0,
			Offers: []model.StreamingOffer{
				{Service: "HBO Max", Link: "https://hbomax.com", Quality: "4K"},
				{Service: "Amazon Prime", Link: "https://amazon.com", Quality: "4K", Price: price("$3.99")},
			},
		},
		{
			ID:       "8",
			Title:    "Spider-Man: No Way Home",
			Year:     2021,
			Poster:   "https://image.tmdb.org/t/p/w500/1g0dhYtq4irTY1GPXvft6k4YLjm.jpg",
			Overview: "Spider-Man's identity is revealed, and he asks Doctor Strange for help.",
			Genres:   []string{"Action", "Adventure", "Fantasy"},
			Runtime:  148,
			Rating:   8.4,
			Offers: []model.StreamingOffer{
				{Service: "Netflix", Link: "https://netflix.com", Quality: "4K"},
				{Service: "Disney+", Link: "https://disneyplus.com", Quality: "4K"},
			},
		},
	}
}
