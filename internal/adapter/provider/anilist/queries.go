package anilist

// Fixed query documents. All of them project the same media fields the app
// ever consumes: id, both title variants, cover art, average score, genres.

const mediaByIDsQuery = `
query ($ids: [Int]) {
  Page(page: 1, perPage: 50) {
    media(id_in: $ids, type: ANIME) {
      id
      title { english romaji }
      coverImage { large extraLarge }
      averageScore
      genres
    }
  }
}`

const searchQuery = `
query ($search: String, $page: Int, $perPage: Int) {
  Page(page: $page, perPage: $perPage) {
    media(search: $search, type: ANIME, sort: POPULARITY_DESC) {
      id
      title { english romaji }
      coverImage { large extraLarge }
      averageScore
      genres
    }
  }
}`

const trendingQuery = `
query ($page: Int, $perPage: Int) {
  Page(page: $page, perPage: $perPage) {
    media(type: ANIME, sort: TRENDING_DESC) {
      id
      title { english romaji }
      coverImage { large extraLarge }
      averageScore
      genres
    }
  }
}`

const popularQuery = `
query ($page: Int, $perPage: Int) {
  Page(page: $page, perPage: $perPage) {
    media(type: ANIME, sort: POPULARITY_DESC) {
      id
      title { english romaji }
      coverImage { large extraLarge }
      averageScore
      genres
    }
  }
}`
