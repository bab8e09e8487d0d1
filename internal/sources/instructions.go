package sources

const spotifyInstructions = `Spotify
1. Open https://www.spotify.com/account/privacy/ and request "Download your data".
   Pick "Extended streaming history" for full listening data.
2. Wait for the email, then download and unzip the archive.
3. Import saved tracks:
     discovery import spotify YourLibrary.json
   or listening history (tracks played 5+ times or 10+ minutes become loved):
     discovery import spotify Streaming_History_Audio_2024.json`

const appleMusicInstructions = `Apple Music
1. In the Music app choose File > Library > Export Library... and save the XML.
   Older iTunes installs keep it at ~/Music/iTunes/iTunes Music Library.xml.
2. discovery import apple_music Library.xml
Loved and favorited tracks are imported as loved; disliked tracks as disliked.`

const qobuzInstructions = `Qobuz
Qobuz has no native export.
1. Export favorites with a playlist transfer service (Soundiiz or similar) as CSV or JSON,
   or write a CSV with the columns title,artist,album.
2. discovery import qobuz favorites.csv
Everything in the file is treated as a favorite.`

const steamInstructions = `Steam
1. Get a Web API key at https://steamcommunity.com/dev/apikey.
2. Find your 64-bit numeric Steam ID (your profile URL or https://steamid.io).
3. Set Steam > Settings > Privacy > Game details to Public.
4. Put api_key and steam_id under [steam] in the config, or export
   STEAM_API_KEY and STEAM_ID, then run:
     discovery import steam --api
   A saved GetOwnedGames JSON response can be imported instead:
     discovery import steam owned_games.json
Games with 10+ hours played are imported as loved.`

const goodreadsInstructions = `Goodreads
1. Open https://www.goodreads.com/review/import and click "Export Library".
2. Download the CSV once the export finishes.
3. discovery import goodreads goodreads_library_export.csv
Books rated 4-5 stars are loved, 1-3 stars are not; star ratings are kept.`

const kindleInstructions = `Kindle
1. Request your data at https://www.amazon.com/hz/privacy-central/data-requests/preview.html
   and select Kindle, or list your books by hand.
2. Save a CSV with the columns Title,Author,ASIN.
3. discovery import kindle kindle_books.csv`

const netflixInstructions = `Netflix
1. Open https://www.netflix.com/account/getmyinfo and request your data.
2. Unzip the download and find CONTENT_INTERACTION/ViewingActivity.csv.
3. discovery import netflix ViewingActivity.csv
Ratings are not in that export. Save https://www.netflix.com/MoviesYouveSeen
as HTML from the browser and import the page to bring in thumbs:
  discovery import netflix ratings.html
Thumbs down becomes 1 star, thumbs up 4, two thumbs up 5.`

const amazonPrimeInstructions = `Amazon Prime Video
1. Request Prime Video data at https://www.amazon.com/hz/privacy-central/data-requests/preview.html.
2. Find the viewing history file under Digital.PrimeVideo.Viewinghistory/.
3. discovery import amazon_prime ViewingHistory.csv
A hand-written CSV with the columns title,type (tv or movie) also works.`

const disneyPlusInstructions = `Disney+
1. Request your data from Account > Privacy and Data on https://www.disneyplus.com/account.
2. Find the viewing history CSV in the download.
3. discovery import disney_plus viewing-history.csv
A hand-written CSV with the columns title,type also works.`

const appleTVInstructions = `Apple TV
1. Request "Apple Media Services information" at https://privacy.apple.com/.
2. Find the viewing activity file in the download (CSV or JSON).
3. discovery import apple_tv viewing_activity.csv
A hand-written CSV with the columns title,type also works.`

const bbcIPlayerInstructions = `BBC iPlayer
1. Request your data at https://www.bbc.co.uk/usingthebbc/your-data/.
2. Find the viewing history in the download, or write a CSV with title,type
   from your "Continue Watching" list.
3. discovery import bbc_iplayer iplayer_history.csv
Programmes are imported as TV unless the type column says film or movie.`

const applePodcastsInstructions = `Apple Podcasts
Option 1: File > Export Subscriptions... in the macOS Podcasts app, then
  discovery import apple_podcasts Podcasts.opml
Option 2: read the app database directly:
  discovery import apple_podcasts "~/Library/Group Containers/<id>.groups.com.apple.podcasts/Documents/MTLibrary.sqlite"
  Shows with bookmarked or saved episodes are imported as loved.
Option 3: a JSON list such as [{"title": "Show", "author": "Host"}].`

const arxivInstructions = `arXiv
1. Save the papers you have read as JSON ([{"id": "2106.09685", "title": "...", "authors": ["..."]}])
   or CSV with the columns id,title,authors.
2. discovery import arxiv papers.json`
