package sqlinline

const QListGenders = `--sql 9a2273ca-d72f-42d1-bb28-4e1bf04e344c
select id, name, display_name, banner_image
from genders
where is_active
order by id;
`

const QGetGenderByName = `--sql 055a1deb-598d-4d82-a056-180c4543a3fa
select id, name, display_name, banner_image
from genders
where name = $1::text and is_active
limit 1;
`

const QListCategoriesByGender = `--sql cfd3e227-f82b-4adc-9282-bd73ce4212f1
select
  c.id,
  c.name,
  c.display_name,
  c.banner_image,
  c.cloth_type,
  count(o.id) as outfit_count
from categories c
left join outfits o on o.category_id = c.id and o.is_active
where c.gender_id = $1::bigint and c.is_active
group by c.id, c.name, c.display_name, c.banner_image, c.cloth_type
order by c.id;
`

const QFindCategory = `--sql e6b31ce5-b9f6-452e-9536-e8183216fbb2
select c.id, c.gender_id, c.name, c.display_name, c.banner_image, c.cloth_type
from categories c
join genders g on g.id = c.gender_id
where c.name = $1::text and g.name = $2::text and c.is_active
limit 1;
`

const QCountOutfits = `--sql 80fdd7bb-6707-40d4-a849-42231166aea4
select count(*)
from outfits
where category_id = $1::bigint
  and is_active
  and ($2::int is null or price >= $2)
  and ($3::int is null or price <= $3);
`

const QListOutfits = `--sql 05526608-ccbb-4310-b5b3-5b3c6f5be687
select id, category_id, name, description, image_url, cloth_type, price, is_active, created_at
from outfits
where category_id = $1::bigint
  and is_active
  and ($2::int is null or price >= $2)
  and ($3::int is null or price <= $3)
order by created_at desc, id desc
limit $4::int offset $5::int;
`

const QGetOutfitByID = `--sql cd02be35-a21c-442b-882c-ee19450b29d6
select id, category_id, name, description, image_url, cloth_type, price, is_active, created_at
from outfits
where id = $1::bigint
limit 1;
`

const QPriceRangeByCategory = `--sql af5eb063-b3fa-42f9-91be-c1d274b4c477
select coalesce(min(o.price), 0), coalesce(max(o.price), 0)
from outfits o
join categories c on c.id = o.category_id
where c.name = $1::text and o.is_active;
`

const QFindActiveOutfitsByIDs = `--sql f011486c-39b7-4d52-b113-b534e52935a9
select id, category_id, name, description, image_url, cloth_type, price, is_active, created_at
from outfits
where id = any($1::bigint[]) and is_active
order by array_position($1::bigint[], id);
`

const QListOutfitsByIDs = `--sql f4e044a6-578d-4736-9b21-9bae37b721ce
select id, category_id, name, description, image_url, cloth_type, price, is_active, created_at
from outfits
where id = any($1::bigint[]);
`

const QCountActiveOutfitsByCategory = `--sql 0a4abd48-2b27-4fd3-bc9e-6e4dd93609ea
select count(*)
from outfits
where category_id = $1::bigint and is_active;
`

const QListActiveOutfitsByCategory = `--sql e35c297b-5367-4b95-9ada-0b7b688c2af3
select id, category_id, name, description, image_url, cloth_type, price, is_active, created_at
from outfits
where category_id = $1::bigint and is_active
order by id
limit $2::int offset $3::int;
`
