package tracker

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingFixture = `<html><body>
<table class="torrents" cellspacing="0">
<tr>
  <td class="colhead">类型</td><td class="colhead">标题</td>
  <td class="colhead">评论</td><td class="colhead">存活时间</td>
  <td class="colhead">大小</td><td class="colhead">种子数</td>
  <td class="colhead">下载数</td><td class="colhead">完成数</td>
</tr>
<tr>
  <td class="rowfollow"><a href="?cat=408"><img class="c_movie" src="pic/category/movie.png" title="电影" alt="电影"/></a></td>
  <td class="rowfollow">
    <table class="torrentname" width="100%"><tr><td class="embedded">
      <a title="Some.Movie.2024.1080p.BluRay.x265" href="details.php?id=123456&amp;hit=1"><b>Some.Movie.2024.1080p.BluRay.x265</b></a>
      <font class="free">免费</font>
      <br/>
      中字原盘 <img src="pic/seeding.png" alt="seeding"/>
    </td></tr></table>
  </td>
  <td class="rowfollow">5</td>
  <td class="rowfollow"><span title="2024-06-01 10:00:00">1天</span></td>
  <td class="rowfollow">12.5<br/>GB</td>
  <td class="rowfollow">100</td>
  <td class="rowfollow">7</td>
  <td class="rowfollow">345</td>
</tr>
<tr>
  <td class="rowfollow"><a href="?cat=401"><img class="c_tvplay" src="pic/category/tvplay.png" title="剧集" alt="剧集"/></a></td>
  <td class="rowfollow">
    <table class="torrentname" width="100%"><tr><td class="embedded">
      <a title="Some.Show.S02.Complete" href="details.php?id=654321&amp;hit=1"><b>Some.Show.S02.Complete</b></a>
      <font class="twouphalfdown">2X 50%</font>
      <font class="hot">热门</font>
      <br/>
      第二季 全12集 <img src="pic/finished.png" alt="finished"/>
    </td></tr></table>
  </td>
  <td class="rowfollow">0</td>
  <td class="rowfollow"><span title="2024-05-20 08:00:00">12天</span></td>
  <td class="rowfollow">512.0<br/>MB</td>
  <td class="rowfollow">1,234</td>
  <td class="rowfollow">0</td>
  <td class="rowfollow">99</td>
</tr>
<tr>
  <td class="rowfollow" colspan="8">advertisement</td>
</tr>
</table>
</body></html>`

func TestParseListingPage(t *testing.T) {
	torrents, err := parseListingPage(strings.NewReader(listingFixture))
	require.NoError(t, err)
	require.Len(t, torrents, 2)

	first := torrents[0]
	assert.Equal(t, 123456, first.ID)
	assert.Equal(t, "电影", first.Category)
	assert.Equal(t, "Some.Movie.2024.1080p.BluRay.x265", first.Title)
	assert.Equal(t, "中字原盘", first.Subtitle)
	assert.Equal(t, PromotionFree, first.Promotion)
	assert.False(t, first.Hot)
	assert.True(t, first.Seeding)
	assert.False(t, first.Finished)
	assert.Equal(t, int64(13421772800), first.Size) // 12.5 GB
	assert.Equal(t, 100, first.Seeders)
	assert.Equal(t, 7, first.Leechers)
	assert.Equal(t, 345, first.Snatched)

	second := torrents[1]
	assert.Equal(t, 654321, second.ID)
	assert.Equal(t, "剧集", second.Category)
	assert.Equal(t, "Some.Show.S02.Complete", second.Title)
	assert.Equal(t, "第二季 全12集", second.Subtitle)
	assert.Equal(t, PromotionTwoUpHalfDown, second.Promotion)
	assert.True(t, second.Hot)
	assert.False(t, second.Seeding)
	assert.True(t, second.Finished)
	assert.Equal(t, int64(536870912), second.Size) // 512 MB
	assert.Equal(t, 1234, second.Seeders)
	assert.Equal(t, 0, second.Leechers)
	assert.Equal(t, 99, second.Snatched)
}

func TestParseListingPageEmpty(t *testing.T) {
	const empty = `<html><body><table class="torrents">
<tr><td class="colhead">类型</td><td class="colhead">标题</td><td/><td/><td/><td/><td/><td/></tr>
</table></body></html>`

	torrents, err := parseListingPage(strings.NewReader(empty))
	require.NoError(t, err)
	assert.Empty(t, torrents)
}

func TestParseListingPageMissingTable(t *testing.T) {
	_, err := parseListingPage(strings.NewReader(`<html><body><p>maintenance</p></body></html>`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPageLayout))
}

func TestParseDetailPage(t *testing.T) {
	const fixture = `<html><body>
<h1 id="top">Some.Movie.2024.1080p.BluRay.x265</h1>
<table><tr><td>
<a class="index" href="download.php?id=123456">[BYRBT].Some.Movie.2024.1080p.BluRay.x265.torrent</a>
</td></tr></table>
<span id="type">电影</span>
</body></html>`

	detail, err := parseDetailPage(strings.NewReader(fixture))
	require.NoError(t, err)
	assert.Equal(t, "[BYRBT].Some.Movie.2024.1080p.BluRay.x265.torrent", detail.Name)
	assert.Equal(t, "电影", detail.Category)
	assert.Equal(t, "download.php?id=123456", detail.DownloadURL)
}

func TestParseDetailPageMissingLink(t *testing.T) {
	_, err := parseDetailPage(strings.NewReader(`<html><body><h1>该种子不存在</h1></body></html>`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPageLayout))
}

func TestParseLoginPage(t *testing.T) {
	const fixture = `<html><body>
<form action="takelogin.php" method="post">
<img id="regimage" src="image.php?action=regimage&amp;imagehash=a1b2c3d4" alt="CAPTCHA"/>
<input type="hidden" name="imagehash" value="a1b2c3d4"/>
<input type="text" name="username"/>
<input type="password" name="password"/>
</form>
</body></html>`

	src, hash, err := parseLoginPage(strings.NewReader(fixture))
	require.NoError(t, err)
	assert.Equal(t, "image.php?action=regimage&imagehash=a1b2c3d4", src)
	assert.Equal(t, "a1b2c3d4", hash)
}

func TestParseLoginPageMissingCaptcha(t *testing.T) {
	_, _, err := parseLoginPage(strings.NewReader(`<html><body><form></form></body></html>`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPageLayout))
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int64
	}{
		{name: "Bytes", in: "980 B", want: 980},
		{name: "Kilobytes", in: "1 KB", want: 1024},
		{name: "Gigabytes with fraction", in: "2.5 GB", want: 2684354560},
		{name: "Joined number and unit", in: "512.0MB", want: 536870912},
		{name: "Non-breaking space", in: "1 KB", want: 1024},
		{name: "Thousands separator", in: "12,288 MB", want: 12288 << 20},
		{name: "Terabytes", in: "1.5 TB", want: 1649267441664},
		{name: "Empty", in: "", want: 0},
		{name: "Unit only", in: "GB", want: 0},
		{name: "Unknown unit", in: "3 XB", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSize(tt.in))
		})
	}
}

func TestTorrentIDFromHref(t *testing.T) {
	tests := []struct {
		name   string
		href   string
		wantID int
		wantOK bool
	}{
		{name: "Plain details link", href: "details.php?id=123&hit=1", wantID: 123, wantOK: true},
		{name: "Absolute link", href: "https://bt.byr.cn/details.php?id=42", wantID: 42, wantOK: true},
		{name: "Missing id", href: "details.php?hit=1", wantOK: false},
		{name: "Non-numeric id", href: "details.php?id=abc", wantOK: false},
		{name: "Zero id", href: "details.php?id=0", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := torrentIDFromHref(tt.href)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantID, id)
			}
		})
	}
}

func TestPromotionLabel(t *testing.T) {
	assert.Equal(t, "FREE", PromotionFree.Label())
	assert.Equal(t, "2X 50%", PromotionTwoUpHalfDown.Label())
	assert.Equal(t, "", PromotionNone.Label())
	assert.True(t, PromotionTwoUpFree.FreeLeech())
	assert.False(t, PromotionHalfDown.FreeLeech())
}
